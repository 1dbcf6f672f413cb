package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/internal/configfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/domainfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/loggerfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/notifyfx"
	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 15 * time.Second
)

type streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// execute runs the command line and maps its result onto a process exit code.
func execute(ctx context.Context, logger *logrus.Logger, args []string, s streams) int {
	cmd := newRootCommand(logger, s)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(s.Err, "Error:", err)
		logger.WithError(err).Error("s3duplicity-backup failed")
	}

	return exitCode(err)
}

func newRootCommand(logger *logrus.Logger, s streams) *cobra.Command {
	var (
		sel         domain.Selection
		modifiers   []string
		restoreTime string
	)

	cmd := &cobra.Command{
		Use:   "s3duplicity-backup",
		Short: "Back a directory up to S3 with duplicity",
		Long: "Runs exactly one duplicity operation against the bucket configured in the settings file:\n" +
			"list the current backup, back up, remove old backup sets or restore.",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := domain.NewRequest(sel, modifiers, restoreTime)
			if err != nil {
				return err
			}

			return runOnce(cmd.Context(), logger, cmd.Flags(), req, s)
		},
	}

	cmd.SetIn(s.In)
	cmd.SetOut(s.Out)
	cmd.SetErr(s.Err)

	flags := cmd.Flags()
	flags.BoolVar(&sel.List, domain.OperationList.String(), false, "List the files contained in the most current backup")
	flags.BoolVar(&sel.Backup, domain.OperationBackup.String(), false, "Back the source directory up")
	flags.BoolVar(&sel.Prune, domain.OperationPrune.String(), false, "Delete backup sets older than the configured remove time")
	flags.BoolVar(&sel.Restore, domain.OperationRestore.String(), false, "Restore the backup into the restore directory")

	addModifierFlag(flags, "dry-run", domain.ModifierDryRun, &modifiers, "Calculate what would be done, but do not perform any actions")
	addModifierFlag(flags, "incr", domain.ModifierIncremental, &modifiers, "Force an incremental backup")

	flags.StringVar(&restoreTime, "restore-time", "", "Restore the backup as it was at this time, overrides the settings file")

	configfx.AddFlags(cmd.PersistentFlags())

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(domain.ErrUsage, err.Error())
	})

	cmd.AddCommand(
		newSetupCommand(logger, s),
		newScheduleCommand(logger),
	)

	return cmd
}

// usageArgs reports positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Wrap(domain.ErrUsage, err.Error())
		}
		return nil
	}
}

func addModifierFlag(fs *pflag.FlagSet, name, token string, modifiers *[]string, usage string) {
	flag := fs.VarPF(&modifierFlag{token: token, modifiers: modifiers}, name, "", usage)
	flag.NoOptDefVal = "true"
}

func runOnce(ctx context.Context, logger *logrus.Logger, flagSet *pflag.FlagSet, req domain.Request, s streams) error {
	v, settings, err := configfx.Load(flagSet)
	if err != nil {
		return err
	}

	var dispatcher *domain.Dispatcher

	app := fx.New(
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),

		fx.WithLogger(loggerfx.FxEventLogger),

		loggerfx.Module(logger),
		configfx.Module(v, settings),
		notifyfx.Module,
		domainfx.Module,

		fx.Populate(&dispatcher),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		return err
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := app.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("Unable to stop cleanly")
		}
	}()

	ctx = appcontext.WithRunId(ctx, uuid.New().String())

	outcome, err := dispatcher.Dispatch(ctx, req)

	fmt.Fprint(s.Out, outcome.Stdout)
	if err != nil {
		fmt.Fprint(s.Err, outcome.Stderr)
	}

	return err
}
