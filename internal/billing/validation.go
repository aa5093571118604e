package billing

import (
	"github.com/shopspring/decimal"
)

// PlanTermsInput is the writable part of a catalog plan.
type PlanTermsInput struct {
	Name          string
	BaseAmount    decimal.Decimal
	CurrencyCode  string
	Interval      Interval
	IntervalCount int
	Discount      *Discount
}

// ValidatePlanTerms rejects plans the scheduler could not bill.
func ValidatePlanTerms(in PlanTermsInput) error {
	const op = "ValidatePlanTerms"
	if in.Name == "" {
		return NewFieldError(op, "name", ErrRequired)
	}
	if in.BaseAmount.IsNegative() {
		return NewFieldError(op, "base_amount", ErrInvalidAmount)
	}
	if !ValidCurrencyCode(in.CurrencyCode) {
		return NewFieldError(op, "currency_code", ErrInvalidCurrencyCode)
	}
	if err := ValidateInterval(in.Interval, in.IntervalCount); err != nil {
		return err
	}
	if in.Discount != nil {
		return in.Discount.Validate()
	}
	return nil
}

// ValidateAssignment rejects assignment terms at write time so invalid values never
// reach the scheduler.
func ValidateAssignment(a Assignment) error {
	const op = "ValidateAssignment"
	if a.CustomAmount != nil && a.CustomAmount.IsNegative() {
		return NewFieldError(op, "custom_amount", ErrInvalidAmount)
	}
	if a.CurrencyCode != "" && !ValidCurrencyCode(a.CurrencyCode) {
		return NewFieldError(op, "currency_code", ErrInvalidCurrencyCode)
	}
	if !a.Owner.IsZero() && !a.Owner.Kind.Valid() {
		return NewFieldError(op, "owner_kind", ErrInvalidOwner)
	}
	interval := a.Interval
	if interval == "" {
		interval = IntervalMonthly
	}
	if err := ValidateInterval(interval, a.IntervalCount); err != nil {
		return err
	}
	if a.Discount != nil {
		return a.Discount.Validate()
	}
	return nil
}
