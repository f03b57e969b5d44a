package fx

import (
	"context"

	"Parcelo/config"
	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/jobs"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		newProjectionJob,
	),
	fx.Invoke(
		registerProjectionJob,
	),
)

func newProjectionJob(cfg *config.Config, subscriptionSvc *subscription.Service) *jobs.ProjectionJob {
	return jobs.NewProjectionJob(cfg, subscriptionSvc)
}

func registerProjectionJob(lc fx.Lifecycle, job *jobs.ProjectionJob) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return job.Start()
		},
		OnStop: func(ctx context.Context) error {
			job.Stop()
			return nil
		},
	})
}
