package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yurykabanov/s3duplicity-backup/internal/configfx"
	"github.com/yurykabanov/s3duplicity-backup/internal/loggerfx"
	"github.com/yurykabanov/s3duplicity-backup/pkg/hostsetup"
)

var attachSyslog = loggerfx.AttachSyslog

func newSetupCommand(logger *logrus.Logger, s streams) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the logrotate policy and rsyslog routing files",
		Long: "Creates " + hostsetup.RsyslogPath + " and " + hostsetup.LogrotatePath + " when they are missing.\n" +
			"Asks before creating each file unless --yes is given. Must be run as root.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if setupUsesSyslog(logger, cmd.Flags()) {
				if err := attachSyslog(logger); err != nil {
					logger.WithError(err).Warn("Syslog is unavailable, logging to stderr only")
				}
			}

			preparer := hostsetup.NewPreparer(logger, s.In, s.Out, assumeYes)

			return preparer.EnsureAll(cmd.Context(), hostsetup.DefaultFiles())
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Create missing files without asking")

	return cmd
}

// setupUsesSyslog follows [Log] syslog when the settings file can be read.
// Setup may run before the settings file exists, then syslog is used.
func setupUsesSyslog(logger logrus.FieldLogger, flagSet *pflag.FlagSet) bool {
	v, _, err := configfx.Load(flagSet)
	if err != nil {
		logger.WithError(err).Debug("Settings are unavailable, using default logging")
		return true
	}

	return v.GetBool(loggerfx.ConfigLogSyslog)
}
