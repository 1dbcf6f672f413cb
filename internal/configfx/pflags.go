package configfx

import (
	"github.com/spf13/pflag"

	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	FlagConfig   = "config"
	FlagTimeout  = "timeout"
	FlagLogLevel = "log-level"
)

// flag name -> config key it overrides
var boundFlags = map[string]string{
	FlagTimeout:  ConfigTimeout,
	FlagLogLevel: ConfigLogLevel,
}

func AddFlags(fs *pflag.FlagSet) {
	// Config file flag
	fs.StringP(FlagConfig, "c", settings.DefaultPath, "Settings file")

	fs.Duration(FlagTimeout, 0, "Kill duplicity when it runs longer than this, 0 disables the timeout")
	fs.String(FlagLogLevel, "", "Log level, overrides [Log] level from the settings file")
}
