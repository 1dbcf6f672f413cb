package domainfx

import (
	"context"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

func NewCron() *cron.Cron {
	return cron.New()
}

func ScheduleManager(
	logger *logrus.Logger,
	rules []domain.Rule,
	dispatcher *domain.Dispatcher,
	repository domain.OutcomeRepository,
	cron *cron.Cron,
) *domain.ScheduleManager {
	return domain.NewScheduleManager(logger, rules, dispatcher, repository, cron)
}

// RunScheduleManager runs the manager for the app lifetime. A manager that
// can't start shuts the whole app down.
func RunScheduleManager(lc fx.Lifecycle, manager *domain.ScheduleManager, shutdowner fx.Shutdowner, logger *logrus.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				if err := manager.Run(ctx); err != nil {
					logger.WithError(err).Error("Schedule manager stopped")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()

			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
