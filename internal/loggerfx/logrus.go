package loggerfx

import (
	"context"
	"io"
	"log/syslog"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/pkg/hostsetup"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	ConfigLogLevel  = "log.level"
	ConfigLogFormat = "log.format"
	ConfigLogSyslog = "log.syslog"
)

// New builds the process logger. It is created once in main and handed to
// every module, nothing is configured at import time.
func New(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{})

	return logger
}

type syslogDialer func() (logrus.Hook, error)

func dialSyslog() (logrus.Hook, error) {
	return lsyslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_USER, hostsetup.ProgramName)
}

// AttachSyslog routes entries to syslog for commands that run without the
// full module graph.
func AttachSyslog(logger *logrus.Logger) error {
	return attachSyslog(logger, dialSyslog)
}

func attachSyslog(logger *logrus.Logger, dial syslogDialer) error {
	hook, err := dial()
	if err != nil {
		return errors.Wrap(err, "unable to connect to syslog")
	}

	logger.AddHook(hook)

	return nil
}

func ConfigureLogger(lc fx.Lifecycle, logger *logrus.Logger, v *viper.Viper, s *settings.Settings) error {
	return configureLogger(lc, logger, v, s, dialSyslog)
}

func configureLogger(lc fx.Lifecycle, logger *logrus.Logger, v *viper.Viper, s *settings.Settings, dial syslogDialer) error {
	logLevel := v.GetString(ConfigLogLevel)
	logFormat := v.GetString(ConfigLogFormat)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	switch logFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		fallthrough
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	if !v.GetBool(ConfigLogSyslog) {
		return nil
	}

	hook, err := dial()
	if err == nil {
		logger.AddHook(hook)
		return nil
	}

	// No syslog on this host, write straight into the configured log file.
	f, ferr := os.OpenFile(s.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if ferr != nil {
		logger.WithError(err).Warn("Syslog is unavailable, logging to stderr only")
		return nil
	}

	logger.SetOutput(io.MultiWriter(logger.Out, f))
	logger.WithError(err).WithField("logfile", s.LogFile).Warn("Syslog is unavailable, logging to file")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.Wrap(f.Close(), "unable to close log file")
		},
	})

	return nil
}
