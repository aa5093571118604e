package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeExisting Outcome = "existing"
	OutcomeSkipped  Outcome = "skipped"
)

// GenerateResult is what one (student, period) generation did.
type GenerateResult struct {
	StudentID uuid.UUID
	Period    string
	Outcome   Outcome
	Fee       *db_models.StudentFee
}

type StudentFailure struct {
	StudentID uuid.UUID `json:"student_id"`
	Kind      string    `json:"kind"`
	Error     string    `json:"error"`
}

// RunReport summarises a batch pass over every active assignment.
type RunReport struct {
	Period   string           `json:"period"`
	Created  int              `json:"created"`
	Existing int              `json:"existing"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Failures []StudentFailure `json:"failures,omitempty"`
	Duration time.Duration    `json:"duration_ns"`

	err error
}

// Err combines every per-student failure, nil when the run was clean.
func (r *RunReport) Err() error {
	return r.err
}

type HintReport struct {
	Checked  int              `json:"checked"`
	Updated  int              `json:"updated"`
	Failed   int              `json:"failed"`
	Failures []StudentFailure `json:"failures,omitempty"`
}

type BillingServiceInterface interface {
	// RunPeriod generates period's charge for every active assignment. Failures are
	// isolated per student and reported; the returned error is only for failures that
	// stop the whole run.
	RunPeriod(ctx context.Context, period billing.Period) (*RunReport, error)
	GenerateForStudent(ctx context.Context, studentID uuid.UUID, period billing.Period) (*GenerateResult, error)
	// Backfill generates from..to in order and stops at the first failure.
	Backfill(ctx context.Context, studentID uuid.UUID, from, to billing.Period) ([]GenerateResult, error)
	ReconcileHints(ctx context.Context) (*HintReport, error)
}

type BillingParams struct {
	fx.In

	Assignments repositories.IFeePlanRepository
	FeePlans    FeePlanServiceInterface
	Ledger      LedgerServiceInterface
	Currencies  CurrencyRegistry
	Config      *config.Config
	Log         *zap.Logger
}

type BillingService struct {
	assignments repositories.IFeePlanRepository
	feePlans    FeePlanServiceInterface
	ledger      LedgerServiceInterface
	currencies  CurrencyRegistry
	opts        billing.ScheduleOptions
	workers     int
	pageSize    int
	log         *zap.Logger
}

func NewBillingService(p BillingParams) BillingServiceInterface {
	return &BillingService{
		assignments: p.Assignments,
		feePlans:    p.FeePlans,
		ledger:      p.Ledger,
		currencies:  p.Currencies,
		opts:        p.Config.Billing.ScheduleOptions(),
		workers:     p.Config.Billing.Workers,
		pageSize:    p.Config.Billing.PageSize,
		log:         p.Log.Named("billing.run"),
	}
}

func (b *BillingService) RunPeriod(ctx context.Context, period billing.Period) (*RunReport, error) {
	started := time.Now()
	report := &RunReport{Period: period.String()}
	var mu sync.Mutex

	err := b.eachActive(ctx, func(a *db_models.StudentFeePlan) {
		res, err := b.generate(ctx, a, period)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, failureOf(a.StudentID, err))
			report.err = multierr.Append(report.err, fmt.Errorf("student %s: %w", a.StudentID, err))
			return
		}
		switch res.Outcome {
		case OutcomeCreated:
			report.Created++
		case OutcomeExisting:
			report.Existing++
		case OutcomeSkipped:
			report.Skipped++
		}
	})
	report.Duration = time.Since(started)

	b.log.Info("billing run finished",
		zap.String("period", report.Period),
		zap.Int("created", report.Created),
		zap.Int("existing", report.Existing),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report, err
}

func (b *BillingService) GenerateForStudent(ctx context.Context, studentID uuid.UUID, period billing.Period) (*GenerateResult, error) {
	a, err := b.feePlans.GetAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return b.generate(ctx, a, period)
}

func (b *BillingService) Backfill(ctx context.Context, studentID uuid.UUID, from, to billing.Period) ([]GenerateResult, error) {
	const op = "BillingService.Backfill"
	if to.Before(from) {
		return nil, billing.NewFieldError(op, "to", billing.ErrInvalidPeriod)
	}
	a, err := b.feePlans.GetAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}

	periods := billing.PeriodsBetween(from, to)
	results := make([]GenerateResult, 0, len(periods))
	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := b.generate(ctx, a, p)
		if err != nil {
			return results, fmt.Errorf("period %s: %w", p, err)
		}
		results = append(results, *res)
	}
	return results, nil
}

func (b *BillingService) ReconcileHints(ctx context.Context) (*HintReport, error) {
	report := &HintReport{}
	var mu sync.Mutex

	err := b.eachActive(ctx, func(a *db_models.StudentFeePlan) {
		before := a.CachedHints()
		hints, err := b.refreshHints(ctx, a)

		mu.Lock()
		defer mu.Unlock()
		report.Checked++
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, failureOf(a.StudentID, err))
			return
		}
		if before == nil || *before != hints {
			report.Updated++
			b.log.Debug("hints rewritten", zap.String("student_id", a.StudentID.String()))
		}
	})

	b.log.Info("hint reconciliation finished",
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed))
	return report, err
}

// generate resolves the policy and writes one period, retrying once on a lost race.
func (b *BillingService) generate(ctx context.Context, a *db_models.StudentFeePlan, period billing.Period) (*GenerateResult, error) {
	log := b.log.With(zap.String("student_id", a.StudentID.String()), zap.String("period", period.String()))

	var res *GenerateResult
	err := retryOnConflict(func() error {
		var err error
		res, err = b.generateOnce(ctx, a, period)
		return err
	})
	if err != nil {
		switch billing.KindOf(err) {
		case billing.KindConfiguration:
			log.Warn("student skipped: billing not configured", zap.Error(err))
		case billing.KindConflict:
			log.Warn("charge conflicts with the existing row", zap.Error(err))
		default:
			log.Error("charge generation failed", zap.Error(err))
		}
		return nil, err
	}

	if res.Outcome != OutcomeSkipped {
		if _, err := b.refreshHints(ctx, a); err != nil {
			log.Warn("hint refresh failed", zap.Error(err))
		}
	}
	return res, nil
}

func (b *BillingService) generateOnce(ctx context.Context, a *db_models.StudentFeePlan, period billing.Period) (*GenerateResult, error) {
	res := &GenerateResult{StudentID: a.StudentID, Period: period.String()}
	if !a.IsActive {
		res.Outcome = OutcomeSkipped
		return res, nil
	}

	policy, err := b.feePlans.ResolveAssignment(ctx, a)
	if err != nil {
		return nil, err
	}
	currency, err := b.currencies.Resolve(ctx, policy.CurrencyCode)
	if err != nil {
		return nil, err
	}
	charge, ok, err := billing.ChargeFor(policy, period, currency.DecimalPlaces, b.opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		res.Outcome = OutcomeSkipped
		return res, nil
	}

	feeTypeID, err := b.ledger.FeeTypeFor(ctx, a.FeeTypeID)
	if err != nil {
		return nil, err
	}
	fee, created, err := b.ledger.CreateOrGetPeriodCharge(ctx, ChargeInput{
		StudentID:    a.StudentID,
		FeeTypeID:    feeTypeID,
		CurrencyCode: currency.Code,
		Charge:       charge,
	})
	if err != nil {
		return nil, err
	}

	res.Fee = fee
	res.Outcome = OutcomeExisting
	if created {
		res.Outcome = OutcomeCreated
	}
	return res, nil
}

func (b *BillingService) refreshHints(ctx context.Context, a *db_models.StudentFeePlan) (billing.Hints, error) {
	policy, err := b.feePlans.ResolveAssignment(ctx, a)
	if err != nil {
		return billing.Hints{}, err
	}
	return b.feePlans.RefreshHints(ctx, a, policy)
}

// eachActive pages through active assignments and runs fn for each with at most
// b.workers in flight. fn must record its own failures.
func (b *BillingService) eachActive(ctx context.Context, fn func(a *db_models.StudentFeePlan)) error {
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := b.assignments.ListActive(ctx, after, b.pageSize)
		if err != nil {
			return fmt.Errorf("list active assignments: %w", err)
		}
		if len(page) == 0 {
			return nil
		}

		var g errgroup.Group
		g.SetLimit(b.workers)
		for i := range page {
			a := &page[i]
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				fn(a)
				return nil
			})
		}
		_ = g.Wait()

		if len(page) < b.pageSize {
			return ctx.Err()
		}
		after = page[len(page)-1].StudentID
	}
}

func failureOf(studentID uuid.UUID, err error) StudentFailure {
	return StudentFailure{
		StudentID: studentID,
		Kind:      billing.KindOf(err).String(),
		Error:     err.Error(),
	}
}
