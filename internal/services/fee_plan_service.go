package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

// AssignmentInput replaces a student's fee-plan assignment. An empty Interval keeps the
// stored one; on creation it copies the plan's interval.
type AssignmentInput struct {
	Owner         billing.Owner
	PlanID        *uuid.UUID
	FeeTypeID     *uuid.UUID
	CustomAmount  *decimal.Decimal
	CurrencyCode  string
	Interval      billing.Interval
	IntervalCount int
	Discount      *billing.Discount
	EffectiveFrom time.Time
	IsActive      bool
}

// ResolvedPolicy is a student's effective policy together with what the scheduler
// derives from it.
type ResolvedPolicy struct {
	Policy   billing.Policy
	Currency billing.CurrencyInfo
	Hints    billing.Hints
}

type FeePlanServiceInterface interface {
	UpsertAssignment(ctx context.Context, studentID uuid.UUID, in AssignmentInput) (*db_models.StudentFeePlan, error)
	GetAssignment(ctx context.Context, studentID uuid.UUID) (*db_models.StudentFeePlan, error)
	ResolvePolicy(ctx context.Context, studentID uuid.UUID) (*ResolvedPolicy, error)
	ResolveAssignment(ctx context.Context, assignment *db_models.StudentFeePlan) (billing.Policy, error)
	// RefreshHints recomputes the cached next period / due date from the policy and the
	// newest billing-month row, and stores them.
	RefreshHints(ctx context.Context, assignment *db_models.StudentFeePlan, policy billing.Policy) (billing.Hints, error)
	GetOwnerDefaultCurrency(ctx context.Context, owner billing.Owner) (string, error)
	SetOwnerDefaultCurrency(ctx context.Context, owner billing.Owner, code string) error
}

type FeePlanParams struct {
	fx.In

	Assignments repositories.IFeePlanRepository
	Plans       repositories.IPlanRepository
	Owners      repositories.IOwnerRepository
	Currencies  CurrencyRegistry
	Ledger      LedgerServiceInterface
	Config      *config.Config
	Log         *zap.Logger
}

type FeePlanService struct {
	assignments repositories.IFeePlanRepository
	plans       repositories.IPlanRepository
	owners      repositories.IOwnerRepository
	currencies  CurrencyRegistry
	ledger      LedgerServiceInterface
	opts        billing.ScheduleOptions
	log         *zap.Logger
}

func NewFeePlanService(p FeePlanParams) FeePlanServiceInterface {
	return &FeePlanService{
		assignments: p.Assignments,
		plans:       p.Plans,
		owners:      p.Owners,
		currencies:  p.Currencies,
		ledger:      p.Ledger,
		opts:        p.Config.Billing.ScheduleOptions(),
		log:         p.Log.Named("feeplan.service"),
	}
}

func (s *FeePlanService) UpsertAssignment(ctx context.Context, studentID uuid.UUID, in AssignmentInput) (*db_models.StudentFeePlan, error) {
	const op = "FeePlanService.UpsertAssignment"
	if studentID == uuid.Nil {
		return nil, billing.NewFieldError(op, "student_id", billing.ErrRequired)
	}
	if !in.Owner.Kind.Valid() || in.Owner.ID == uuid.Nil {
		return nil, billing.NewFieldError(op, "owner", billing.ErrInvalidOwner)
	}

	existing, err := s.assignments.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	var plan *db_models.FeePlan
	if in.PlanID != nil {
		plan, err = s.plans.GetByID(ctx, *in.PlanID)
		if err != nil {
			return nil, fmt.Errorf("get plan: %w", err)
		}
		if plan == nil {
			return nil, billing.NewValidationError(op, "plan_id", billing.ErrNotFound)
		}
		if plan.OwnerKind == string(billing.OwnerClub) && plan.Owner() != in.Owner {
			return nil, billing.NewFieldError(op, "plan_id", billing.ErrPlanOwnerMismatch)
		}
	}

	if in.Interval == "" {
		switch {
		case existing != nil:
			in.Interval = billing.Interval(existing.Interval)
			if in.IntervalCount == 0 {
				in.IntervalCount = existing.IntervalCount
			}
		case plan != nil:
			in.Interval = billing.Interval(plan.Interval)
			in.IntervalCount = plan.IntervalCount
		default:
			in.Interval = billing.IntervalMonthly
		}
	}
	if in.EffectiveFrom.IsZero() {
		if plan == nil {
			return nil, billing.NewValidationError(op, "effective_from", billing.ErrRequired)
		}
		in.EffectiveFrom = plan.EffectiveFrom
	}
	in.CurrencyCode = billing.NormalizeCurrencyCode(in.CurrencyCode)

	assignment := existing
	if assignment == nil {
		assignment = &db_models.StudentFeePlan{StudentID: studentID}
	}
	applyAssignmentInput(assignment, in)

	if err := billing.ValidateAssignment(assignment.Assignment()); err != nil {
		return nil, err
	}
	if in.CurrencyCode != "" {
		if _, err := s.currencies.Resolve(ctx, in.CurrencyCode); err != nil {
			if billing.KindOf(err) == billing.KindConfiguration {
				return nil, billing.NewValidationError(op, "currency_code", billing.ErrUnknownCurrency)
			}
			return nil, err
		}
	}

	if err := s.assignments.Save(ctx, assignment); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}
	assignment.Plan = plan
	s.log.Info("assignment saved",
		zap.String("student_id", studentID.String()),
		zap.Bool("created", existing == nil))

	// hints are a cache; a policy that does not resolve yet simply has none
	if policy, err := s.ResolveAssignment(ctx, assignment); err == nil {
		if _, err := s.RefreshHints(ctx, assignment, policy); err != nil {
			s.log.Warn("hint refresh failed", zap.String("student_id", studentID.String()), zap.Error(err))
		}
	}
	return assignment, nil
}

func (s *FeePlanService) GetAssignment(ctx context.Context, studentID uuid.UUID) (*db_models.StudentFeePlan, error) {
	assignment, err := s.assignments.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if assignment == nil {
		return nil, billing.NewError("FeePlanService.GetAssignment", billing.ErrNotFound)
	}
	return assignment, nil
}

func (s *FeePlanService) ResolvePolicy(ctx context.Context, studentID uuid.UUID) (*ResolvedPolicy, error) {
	assignment, err := s.GetAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	policy, err := s.ResolveAssignment(ctx, assignment)
	if err != nil {
		return nil, err
	}
	currency, err := s.currencies.Resolve(ctx, policy.CurrencyCode)
	if err != nil {
		return nil, err
	}
	hints, err := s.currentHints(ctx, assignment, policy)
	if err != nil {
		return nil, err
	}
	return &ResolvedPolicy{Policy: policy, Currency: currency, Hints: hints}, nil
}

func (s *FeePlanService) ResolveAssignment(ctx context.Context, assignment *db_models.StudentFeePlan) (billing.Policy, error) {
	in := billing.ResolveInput{
		Assignment:            assignment.Assignment(),
		GlobalDefaultCurrency: defaultCode(ctx, s.currencies),
	}
	if assignment.PlanID != nil {
		plan := assignment.Plan
		if plan == nil || plan.ID != *assignment.PlanID {
			loaded, err := s.plans.GetByID(ctx, *assignment.PlanID)
			if err != nil {
				return billing.Policy{}, fmt.Errorf("get plan: %w", err)
			}
			plan = loaded
		}
		if plan != nil {
			terms := plan.Terms()
			in.Plan = &terms
		}
	}

	ownerDefault, err := s.owners.GetDefaultCurrency(ctx, assignment.Owner())
	if err != nil {
		return billing.Policy{}, fmt.Errorf("get owner default currency: %w", err)
	}
	in.OwnerDefaultCurrency = ownerDefault

	return billing.Resolve(in)
}

func (s *FeePlanService) RefreshHints(ctx context.Context, assignment *db_models.StudentFeePlan, policy billing.Policy) (billing.Hints, error) {
	hints, err := s.currentHints(ctx, assignment, policy)
	if err != nil {
		return billing.Hints{}, err
	}
	if cached := assignment.CachedHints(); cached != nil && *cached == hints {
		return hints, nil
	}
	if err := s.assignments.UpdateHints(ctx, assignment.StudentID, hints); err != nil {
		return billing.Hints{}, fmt.Errorf("update hints: %w", err)
	}
	assignment.NextPeriodStart = &hints.NextPeriodStart
	assignment.NextDueDate = &hints.NextDueDate
	return hints, nil
}

func (s *FeePlanService) currentHints(ctx context.Context, assignment *db_models.StudentFeePlan, policy billing.Policy) (billing.Hints, error) {
	feeTypeID, err := s.ledger.FeeTypeFor(ctx, assignment.FeeTypeID)
	if err != nil {
		return billing.Hints{}, err
	}
	last, err := s.ledger.LatestBillingPeriod(ctx, assignment.StudentID, feeTypeID)
	if err != nil {
		return billing.Hints{}, err
	}
	return billing.NextHints(policy, last, s.opts.GraceDays), nil
}

func (s *FeePlanService) GetOwnerDefaultCurrency(ctx context.Context, owner billing.Owner) (string, error) {
	code, err := s.owners.GetDefaultCurrency(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("get owner default currency: %w", err)
	}
	return code, nil
}

func (s *FeePlanService) SetOwnerDefaultCurrency(ctx context.Context, owner billing.Owner, code string) error {
	const op = "FeePlanService.SetOwnerDefaultCurrency"
	info, err := s.currencies.Resolve(ctx, code)
	if err != nil {
		if billing.KindOf(err) == billing.KindConfiguration {
			return billing.NewValidationError(op, "currency_code", billing.ErrUnknownCurrency)
		}
		return err
	}
	if err := s.owners.SetDefaultCurrency(ctx, owner, info.Code); err != nil {
		return fmt.Errorf("set owner default currency: %w", err)
	}
	return nil
}

func applyAssignmentInput(a *db_models.StudentFeePlan, in AssignmentInput) {
	a.OwnerKind = string(in.Owner.Kind)
	a.OwnerID = in.Owner.ID
	a.PlanID = in.PlanID
	a.FeeTypeID = in.FeeTypeID
	a.CustomAmount = in.CustomAmount
	a.CurrencyCode = nil
	if in.CurrencyCode != "" {
		code := in.CurrencyCode
		a.CurrencyCode = &code
	}
	a.Interval = string(in.Interval)
	a.IntervalCount = 0
	if in.Interval == billing.IntervalCustom {
		a.IntervalCount = in.IntervalCount
	}
	a.DiscountType, a.DiscountValue = discountColumns(in.Discount)
	a.EffectiveFrom = billing.DateOnly(in.EffectiveFrom)
	a.IsActive = in.IsActive
}
