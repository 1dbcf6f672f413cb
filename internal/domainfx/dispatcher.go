package domainfx

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/duplicity"
	"github.com/yurykabanov/s3duplicity-backup/pkg/hostsetup"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	ConfigDuplicity = "options.duplicity"
	ConfigTimeout   = "options.timeout"
	ConfigNotify    = "options.notify"
)

func DispatcherConfigProvider(v *viper.Viper) (domain.DispatcherConfig, error) {
	policy := domain.NotifyPolicy(strings.ToLower(v.GetString(ConfigNotify)))

	switch policy {
	case domain.NotifyNever, domain.NotifyFailure, domain.NotifyAlways:
	default:
		return domain.DispatcherConfig{}, errors.Errorf("invalid notify policy '%s', expected never, failure or always", policy)
	}

	timeout, err := parseTimeout(v.Get(ConfigTimeout))
	if err != nil {
		return domain.DispatcherConfig{}, err
	}

	return domain.DispatcherConfig{
		Program: v.GetString(ConfigDuplicity),
		Timeout: timeout,
		Notify:  policy,
	}, nil
}

// parseTimeout accepts Go durations such as "90m" or "2h30m". Empty or unset
// disables the timeout, anything else that doesn't parse is an error.
func parseTimeout(raw interface{}) (time.Duration, error) {
	if raw == nil {
		return 0, nil
	}

	if str, ok := raw.(string); ok {
		str = strings.TrimSpace(str)
		if str == "" {
			return 0, nil
		}

		timeout, err := time.ParseDuration(str)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid timeout '%s'", str)
		}
		raw = timeout
	}

	timeout, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, errors.Wrap(err, "invalid timeout")
	}
	if timeout < 0 {
		return 0, errors.Errorf("invalid timeout %s, must not be negative", timeout)
	}

	return timeout, nil
}

// CommandRunner passes the configured region to the engine unless the
// environment already names one.
func CommandRunner(logger *logrus.Logger, s *settings.Settings) domain.CommandRunner {
	var env []string

	if _, ok := os.LookupEnv("AWS_DEFAULT_REGION"); !ok && s.Region != "" {
		env = append(env, "AWS_DEFAULT_REGION="+s.Region)
	}

	return duplicity.NewRunner(logger, env)
}

func Dispatcher(
	logger *logrus.Logger,
	s *settings.Settings,
	config domain.DispatcherConfig,
	runner domain.CommandRunner,
	notifier domain.Notifier,
) *domain.Dispatcher {
	return domain.NewDispatcher(logger, s, config, runner, notifier)
}

// CheckHostFiles only warns about missing host files, creating them is left
// to the setup command.
func CheckHostFiles(logger *logrus.Logger) {
	hostsetup.NewPreparer(logger, os.Stdin, os.Stdout, false).Check(hostsetup.DefaultFiles())
}
