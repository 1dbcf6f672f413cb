package domainfx

import (
	"go.uber.org/fx"
)

// Module wires the dispatcher used by one-shot runs.
var Module = fx.Options(
	fx.Provide(DispatcherConfigProvider),
	fx.Provide(CommandRunner),
	fx.Provide(Dispatcher),
	fx.Invoke(CheckHostFiles),
)

// ScheduleModule adds the cron driven manager on top of Module.
var ScheduleModule = fx.Options(
	fx.Provide(LoadRules),
	fx.Provide(NewCron),
	fx.Provide(ScheduleManager),
	fx.Invoke(RunScheduleManager),
)
