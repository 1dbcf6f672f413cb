package metricsfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(StatusServerConfigProvider),
	fx.Provide(StatusServer),
	fx.Provide(StatusRouter),
	fx.Provide(Listener),
	fx.Invoke(RunServer),

	fx.Provide(RunsStatusHandler),
	fx.Invoke(RegisterRunsStatusHandler),
)
