package configfx

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	EnvPrefix = "s3duplicity"

	ConfigTimeout  = "options.timeout"
	ConfigLogLevel = "log.level"
)

var defaults = map[string]interface{}{
	"options.duplicity": "/usr/bin/duplicity",
	"options.notify":    "failure",

	"log.level":  "info",
	"log.format": "text",
	"log.syslog": true,

	"server.timeout.read":  "10s",
	"server.timeout.write": "10s",
}

// ViperProvider reads the settings file named by the config flag. The file
// MUST exist, a missing file is a fatal error.
func ViperProvider(flagSet *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for name, key := range boundFlags {
		flag := flagSet.Lookup(name)
		if flag == nil {
			continue
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.Wrapf(err, "unable to bind flag --%s", name)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	path, err := flagSet.GetString(FlagConfig)
	if err != nil || path == "" {
		path = settings.DefaultPath
	}

	if err := settings.Read(v, path); err != nil {
		return nil, err
	}

	return v, nil
}
