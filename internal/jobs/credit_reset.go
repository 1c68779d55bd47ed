package jobs

import (
	"context"
	"time"

	"pressing-booking/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CreditReset grants every entitled subscription its weekly credits. The grant
// insert is keyed on (subscription, week), so overlapping runs across replicas
// are harmless.
type CreditReset struct {
	credits usecase.CreditService
	log     *zap.Logger
	cron    *cron.Cron
}

func NewCreditReset(credits usecase.CreditService, log *zap.Logger) *CreditReset {
	return &CreditReset{
		credits: credits,
		log:     log.With(zap.String("job", "credit_reset")),
	}
}

// Start schedules the reset for every Monday at 00:05 and runs one catch-up
// pass immediately so a restart never skips the current week.
func (j *CreditReset) Start() error {
	j.cron = cron.New()

	if _, err := j.cron.AddFunc("5 0 * * 1", j.run); err != nil {
		return err
	}
	j.cron.Start()

	go j.run()

	j.log.Info("Weekly credit reset scheduled")
	return nil
}

func (j *CreditReset) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

func (j *CreditReset) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	granted, err := j.credits.ResetWeekly(ctx)
	if err != nil {
		j.log.Error("Weekly credit reset failed", zap.Error(err))
		return
	}

	j.log.Info("Weekly credit reset run finished", zap.Int("granted", granted))
}
