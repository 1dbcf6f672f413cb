package configfx

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

// Load reads the configuration eagerly so that a missing file or key is
// reported before any other module is built.
func Load(flagSet *pflag.FlagSet) (*viper.Viper, *settings.Settings, error) {
	v, err := ViperProvider(flagSet)
	if err != nil {
		return nil, nil, err
	}

	s, err := settings.FromViper(v)
	if err != nil {
		return nil, nil, err
	}

	return v, s, nil
}

func Module(v *viper.Viper, s *settings.Settings) fx.Option {
	return fx.Supply(v, s)
}
