package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanTerms is the catalog entry as the resolver sees it.
type PlanTerms struct {
	ID            uuid.UUID
	Owner         Owner
	BaseAmount    decimal.Decimal
	CurrencyCode  string
	Interval      Interval
	IntervalCount int
	Discount      *Discount
	EffectiveFrom time.Time
}

// Assignment is a student's individual fee-plan terms.
type Assignment struct {
	StudentID     uuid.UUID
	Owner         Owner
	PlanID        *uuid.UUID
	CustomAmount  *decimal.Decimal
	CurrencyCode  string
	Interval      Interval
	IntervalCount int
	Discount      *Discount
	EffectiveFrom time.Time
}

// ResolveInput carries everything Resolve needs; Plan and the currency fallbacks are
// optional.
type ResolveInput struct {
	Assignment            Assignment
	Plan                  *PlanTerms
	OwnerDefaultCurrency  string
	GlobalDefaultCurrency string
}

// Policy is the fully resolved billing policy for one student.
type Policy struct {
	StudentID     uuid.UUID       `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	Interval      Interval        `json:"interval"`
	IntervalCount int             `json:"interval_count"`
	Discount      *Discount       `json:"discount,omitempty"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// Resolve merges assignment overrides with plan defaults. Each field resolves on its
// own: the first non-empty source wins.
func Resolve(in ResolveInput) (Policy, error) {
	const op = "Resolve"
	a := in.Assignment

	var amount decimal.Decimal
	switch {
	case a.CustomAmount != nil:
		amount = *a.CustomAmount
	case in.Plan != nil:
		amount = in.Plan.BaseAmount
	default:
		return Policy{}, NewError(op, ErrNoAmountConfigured)
	}
	if amount.IsNegative() {
		return Policy{}, NewFieldError(op, "amount", ErrInvalidAmount)
	}

	currency := firstCurrency(a.CurrencyCode, planCurrency(in.Plan), in.OwnerDefaultCurrency, in.GlobalDefaultCurrency)
	if currency == "" {
		return Policy{}, NewError(op, ErrNoDefaultConfigured)
	}

	interval := a.Interval
	if interval == "" {
		interval = IntervalMonthly
	}
	if err := ValidateInterval(interval, a.IntervalCount); err != nil {
		return Policy{}, err
	}
	count := a.IntervalCount
	if interval != IntervalCustom {
		count = 0
	}

	var discount *Discount
	switch {
	case a.Discount != nil && a.Discount.Type != "":
		d := *a.Discount
		discount = &d
	case in.Plan != nil && in.Plan.Discount != nil && in.Plan.Discount.Type != "":
		d := *in.Plan.Discount
		discount = &d
	}
	if discount != nil {
		if err := discount.Validate(); err != nil {
			return Policy{}, err
		}
	}

	effective := a.EffectiveFrom
	if effective.IsZero() && in.Plan != nil {
		effective = in.Plan.EffectiveFrom
	}
	if effective.IsZero() {
		return Policy{}, NewFieldError(op, "effective_from", ErrNoEffectiveDate)
	}

	return Policy{
		StudentID:     a.StudentID,
		Amount:        amount,
		CurrencyCode:  currency,
		Interval:      interval,
		IntervalCount: count,
		Discount:      discount,
		EffectiveFrom: DateOnly(effective),
	}, nil
}

func planCurrency(p *PlanTerms) string {
	if p == nil {
		return ""
	}
	return p.CurrencyCode
}

func firstCurrency(codes ...string) string {
	for _, c := range codes {
		if c = NormalizeCurrencyCode(c); c != "" {
			return c
		}
	}
	return ""
}
