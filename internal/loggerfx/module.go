package loggerfx

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

func Module(logger *logrus.Logger) fx.Option {
	return fx.Options(
		fx.Supply(logger),
		fx.Provide(DefaultLoggerAdapter),
		fx.Invoke(ConfigureLogger),
	)
}
