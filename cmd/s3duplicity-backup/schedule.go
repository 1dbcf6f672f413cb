package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/internal/configfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/domainfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/loggerfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/metricsfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/notifyfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/storagefx"
	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

func newScheduleCommand(logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run operations on the cron specs of the [Schedule] section",
		Long: "Keeps running and fires the operations configured in the [Schedule] section.\n" +
			"Runs never overlap. With [Server] address set, the latest outcome of every\n" +
			"operation is served at GET /status/runs.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), logger, cmd)
		},
	}
}

func runSchedule(ctx context.Context, logger *logrus.Logger, cmd *cobra.Command) error {
	v, settings, err := configfx.Load(cmd.Flags())
	if err != nil {
		return err
	}

	rules, err := domainfx.LoadRules(v)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return domain.ErrNoRules
	}

	options := []fx.Option{
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),

		fx.WithLogger(loggerfx.FxEventLogger),

		loggerfx.Module(logger),
		configfx.Module(v, settings),
		notifyfx.Module,
		storagefx.Module,
		domainfx.Module,
		domainfx.ScheduleModule,
	}

	if v.GetString(metricsfx.ConfigServerAddress) != "" {
		options = append(options, metricsfx.Module)
	}

	app := fx.New(options...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		return err
	}

	logger.WithField("total_rules", len(rules)).Info("Schedule started")

	var exitCode int

	select {
	case <-ctx.Done():
		logger.Info("Received signal, stopping schedule")
	case signal := <-app.Wait():
		exitCode = signal.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		return err
	}

	if exitCode != 0 {
		return errScheduleAborted
	}

	return nil
}
