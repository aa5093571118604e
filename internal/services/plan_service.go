package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

// PlanInput is the writable part of a catalog plan.
type PlanInput struct {
	Owner         billing.Owner
	Name          string
	Description   *string
	BaseAmount    decimal.Decimal
	CurrencyCode  string
	Interval      billing.Interval
	IntervalCount int
	Discount      *billing.Discount
	EffectiveFrom time.Time
	IsActive      bool
}

type PlanServiceInterface interface {
	CreatePlan(ctx context.Context, in PlanInput) (*db_models.FeePlan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, in PlanInput) (*db_models.FeePlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*db_models.FeePlan, error)
	ListPlans(ctx context.Context, owner billing.Owner, activeOnly bool) ([]db_models.FeePlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

func NewPlanService(planRepo repositories.IPlanRepository, currencies CurrencyRegistry, log *zap.Logger) PlanServiceInterface {
	return &PlanService{
		planRepo:   planRepo,
		currencies: currencies,
		log:        log.Named("plan.service"),
	}
}

type PlanService struct {
	planRepo   repositories.IPlanRepository
	currencies CurrencyRegistry
	log        *zap.Logger
}

func (p *PlanService) CreatePlan(ctx context.Context, in PlanInput) (*db_models.FeePlan, error) {
	if err := p.validate(ctx, "PlanService.CreatePlan", &in); err != nil {
		return nil, err
	}

	plan := &db_models.FeePlan{}
	applyPlanInput(plan, in)
	if err := p.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	p.log.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("owner", in.Owner.String()))
	return plan, nil
}

// UpdatePlan rewrites the template. Existing assignments keep their own interval; the
// next billing pass picks up amount, currency and discount changes.
func (p *PlanService) UpdatePlan(ctx context.Context, id uuid.UUID, in PlanInput) (*db_models.FeePlan, error) {
	const op = "PlanService.UpdatePlan"
	plan, err := p.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	// the owner of a plan never changes
	in.Owner = plan.Owner()
	if err := p.validate(ctx, op, &in); err != nil {
		return nil, err
	}

	applyPlanInput(plan, in)
	if err := p.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return plan, nil
}

func (p *PlanService) GetPlan(ctx context.Context, id uuid.UUID) (*db_models.FeePlan, error) {
	plan, err := p.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil {
		return nil, billing.NewError("PlanService.GetPlan", billing.ErrNotFound)
	}
	return plan, nil
}

func (p *PlanService) ListPlans(ctx context.Context, owner billing.Owner, activeOnly bool) ([]db_models.FeePlan, error) {
	plans, err := p.planRepo.ListByOwner(ctx, owner, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (p *PlanService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := p.planRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	p.log.Info("plan deleted, assignments detached", zap.String("plan_id", id.String()))
	return nil
}

func (p *PlanService) validate(ctx context.Context, op string, in *PlanInput) error {
	if !in.Owner.Kind.Valid() || in.Owner.ID == uuid.Nil {
		return billing.NewFieldError(op, "owner", billing.ErrInvalidOwner)
	}
	if in.EffectiveFrom.IsZero() {
		return billing.NewValidationError(op, "effective_from", billing.ErrRequired)
	}
	if in.Interval == "" {
		in.Interval = billing.IntervalMonthly
	}
	in.CurrencyCode = billing.NormalizeCurrencyCode(in.CurrencyCode)
	if err := billing.ValidatePlanTerms(billing.PlanTermsInput{
		Name:          in.Name,
		BaseAmount:    in.BaseAmount,
		CurrencyCode:  in.CurrencyCode,
		Interval:      in.Interval,
		IntervalCount: in.IntervalCount,
		Discount:      in.Discount,
	}); err != nil {
		return err
	}
	if _, err := p.currencies.Resolve(ctx, in.CurrencyCode); err != nil {
		if billing.KindOf(err) == billing.KindConfiguration {
			return billing.NewValidationError(op, "currency_code", billing.ErrUnknownCurrency)
		}
		return err
	}
	return nil
}

func applyPlanInput(plan *db_models.FeePlan, in PlanInput) {
	plan.OwnerKind = string(in.Owner.Kind)
	plan.OwnerID = in.Owner.ID
	plan.Name = in.Name
	plan.Description = in.Description
	plan.BaseAmount = in.BaseAmount
	plan.CurrencyCode = in.CurrencyCode
	plan.Interval = string(in.Interval)
	plan.IntervalCount = 0
	if in.Interval == billing.IntervalCustom {
		plan.IntervalCount = in.IntervalCount
	}
	plan.DiscountType, plan.DiscountValue = discountColumns(in.Discount)
	plan.EffectiveFrom = billing.DateOnly(in.EffectiveFrom)
	plan.IsActive = in.IsActive
}

func discountColumns(d *billing.Discount) (*string, *decimal.Decimal) {
	if d == nil || d.Type == "" {
		return nil, nil
	}
	typ := string(d.Type)
	value := d.Value
	return &typ, &value
}
