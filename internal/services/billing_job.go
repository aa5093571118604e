package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"clubfees/internal/billing"
)

// BillingJob runs the current period on a ticker. Runs are idempotent, so a tick that
// overlaps a manual run only finds existing rows.
type BillingJob struct {
	billing  BillingServiceInterface
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBillingJob(svc BillingServiceInterface, interval time.Duration, log *zap.Logger) *BillingJob {
	return &BillingJob{
		billing:  svc,
		interval: interval,
		now:      time.Now,
		log:      log.Named("billing.job"),
	}
}

// Start launches the loop; an interval of zero leaves the job disabled.
func (j *BillingJob) Start() {
	if j.interval <= 0 {
		j.log.Info("billing job disabled")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.log.Info("billing job started", zap.Duration("interval", j.interval))
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Tick(ctx)
			}
		}
	}()
}

// Tick runs the UTC period containing now once.
func (j *BillingJob) Tick(ctx context.Context) {
	period := billing.PeriodOf(j.now())
	report, err := j.billing.RunPeriod(ctx, period)
	if err != nil {
		j.log.Error("scheduled billing run aborted", zap.String("period", period.String()), zap.Error(err))
		return
	}
	if report.Failed > 0 {
		j.log.Warn("scheduled billing run had failures",
			zap.String("period", period.String()),
			zap.Int("failed", report.Failed),
			zap.Error(report.Err()))
	}
}

// Stop cancels the loop and waits for an in-flight run to return.
func (j *BillingJob) Stop(ctx context.Context) error {
	if j.cancel == nil {
		return nil
	}
	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
