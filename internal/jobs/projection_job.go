package jobs

import (
	"context"
	"time"

	"Parcelo/config"
	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/logger"

	"github.com/robfig/cron/v3"
)

// projectionHorizonMonths define até quando as cobranças de assinaturas
// ativas são materializadas a cada execução.
const projectionHorizonMonths = 1

const runTimeout = 5 * time.Minute

// ProjectionJob materializa periodicamente as cobranças projetadas das
// assinaturas ativas.
type ProjectionJob struct {
	Subscriptions *subscription.Service
	Config        *config.Config

	cron *cron.Cron
}

func NewProjectionJob(cfg *config.Config, subscriptions *subscription.Service) *ProjectionJob {
	return &ProjectionJob{
		Subscriptions: subscriptions,
		Config:        cfg,
	}
}

func (j *ProjectionJob) Start() error {
	location, err := time.LoadLocation(j.Config.Scheduler.TimeZone)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("timezone", j.Config.Scheduler.TimeZone).
			Msg("Fuso horário inválido, usando UTC")
		location = time.UTC
	}

	j.cron = cron.New(cron.WithLocation(location))
	if _, err := j.cron.AddFunc(j.Config.Scheduler.ProjectionSchedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	logger.Info().
		Str("schedule", j.Config.Scheduler.ProjectionSchedule).
		Msg("Job de projeção de assinaturas agendado")
	return nil
}

func (j *ProjectionJob) Stop() {
	if j.cron != nil {
		ctx := j.cron.Stop()
		<-ctx.Done()
	}
}

func (j *ProjectionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	until := time.Now().AddDate(0, projectionHorizonMonths, 0)
	created, err := j.Subscriptions.ProjectCharges(ctx, until)
	if err != nil {
		logger.Error().Err(err).Msg("Falha ao projetar cobranças de assinaturas")
		return
	}

	if created > 0 {
		logger.Info().Int("created", created).Msg("Novas cobranças projetadas")
	}
}
