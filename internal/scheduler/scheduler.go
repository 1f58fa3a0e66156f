// Package scheduler generates each month's maintenance bills on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"society_ease/internal/billing"
	"society_ease/internal/settings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const runTimeout = 2 * time.Minute

// BillingJob bills every resident for the current period at the configured amount
type BillingJob struct {
	db   *gorm.DB
	svc  *billing.Service
	cron *cron.Cron
}

// New creates a job; call Start to schedule it
func New(db *gorm.DB, svc *billing.Service) *BillingJob {
	return &BillingJob{db: db, svc: svc}
}

// Start schedules the job with a standard five field cron spec.
// An empty spec leaves generation to the admin endpoint.
func (j *BillingJob) Start(spec string) error {
	if spec == "" {
		logrus.Info("Monthly bill scheduler disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_, _ = j.Run(ctx)
	}); err != nil {
		return fmt.Errorf("invalid billing schedule %q: %w", spec, err)
	}
	j.cron = c
	c.Start()
	logrus.WithField("schedule", spec).Info("Monthly bill scheduler started")
	return nil
}

// Stop waits for a running job to finish
func (j *BillingJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	logrus.Info("Monthly bill scheduler stopped")
}

// Run generates bills once. A period that is already billed, or a society with
// no residents, is not a failure.
func (j *BillingJob) Run(ctx context.Context) (int, error) {
	s, err := settings.Load(ctx, j.db)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Scheduled billing could not load settings")
		return 0, err
	}
	period := j.svc.CurrentPeriod()
	created, err := j.svc.Generate(ctx, s.MaintenanceAmount, period)
	switch {
	case errors.Is(err, billing.ErrPeriodExists), errors.Is(err, billing.ErrNoResidents):
		logrus.WithFields(logrus.Fields{"period": period.String(), "reason": err.Error()}).Info("Scheduled billing skipped")
		return 0, nil
	case err != nil:
		logrus.WithFields(logrus.Fields{"period": period.String(), "error": err.Error()}).Error("Scheduled billing failed")
		return 0, err
	}
	return created, nil
}
