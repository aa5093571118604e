package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(strings.ToLower(strings.TrimSpace(s))) {
	case DiscountPercent:
		return DiscountPercent, nil
	case DiscountFixed:
		return DiscountFixed, nil
	}
	return "", NewFieldError("ParseDiscountType", "discount_type", ErrInvalidDiscountValue)
}

type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Validate checks percent is within [0, 100] and fixed is non-negative.
func (d Discount) Validate() error {
	switch d.Type {
	case DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return NewFieldError("Discount.Validate", "discount_value", ErrInvalidDiscountValue)
		}
	case DiscountFixed:
		if d.Value.IsNegative() {
			return NewFieldError("Discount.Validate", "discount_value", ErrInvalidDiscountValue)
		}
	default:
		return NewFieldError("Discount.Validate", "discount_type", ErrInvalidDiscountValue)
	}
	return nil
}

// ApplyDiscount returns base after d, clamped at zero and rounded half-up once to
// places decimals. A nil discount only rounds.
func ApplyDiscount(base decimal.Decimal, d *Discount, places int32) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, NewFieldError("ApplyDiscount", "amount", ErrInvalidAmount)
	}
	if d == nil {
		return RoundHalfUp(base, places), nil
	}
	if err := d.Validate(); err != nil {
		return decimal.Zero, err
	}

	var out decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		out = base.Mul(decimal.NewFromInt(1).Sub(d.Value.Div(hundred)))
	case DiscountFixed:
		out = base.Sub(d.Value)
	}
	if out.IsNegative() {
		out = decimal.Zero
	}
	return RoundHalfUp(out, places), nil
}

// DiscountAmount is the portion of base removed by d after rounding; the ledger stores
// it next to the undiscounted amount.
func DiscountAmount(base decimal.Decimal, d *Discount, places int32) (decimal.Decimal, error) {
	net, err := ApplyDiscount(base, d, places)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundHalfUp(base, places).Sub(net), nil
}
