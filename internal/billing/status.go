package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type FeeStatus string

const (
	FeePending FeeStatus = "pending"
	FeePartial FeeStatus = "partial"
	FeePaid    FeeStatus = "paid"
)

func (s FeeStatus) rank() int {
	switch s {
	case FeePartial:
		return 1
	case FeePaid:
		return 2
	}
	return 0
}

// Precedes reports whether moving from s to next is a forward transition (or none).
func (s FeeStatus) Precedes(next FeeStatus) bool {
	return s.rank() <= next.rank()
}

// AmountDue is amount + fine - discount.
func AmountDue(amount, discount, fine decimal.Decimal) decimal.Decimal {
	return amount.Add(fine).Sub(discount)
}

// DeriveStatus is the only way a ledger status is set. A row with nothing due is paid.
func DeriveStatus(amount, discount, fine, paid decimal.Decimal) FeeStatus {
	due := AmountDue(amount, discount, fine)
	switch {
	case !due.IsPositive():
		return FeePaid
	case paid.GreaterThanOrEqual(due):
		return FeePaid
	case paid.IsPositive():
		return FeePartial
	default:
		return FeePending
	}
}

type OverpaymentPolicy string

const (
	OverpaymentCap    OverpaymentPolicy = "cap"
	OverpaymentReject OverpaymentPolicy = "reject"
)

func ParseOverpaymentPolicy(s string) (OverpaymentPolicy, error) {
	switch p := OverpaymentPolicy(s); p {
	case "":
		return OverpaymentCap, nil
	case OverpaymentCap, OverpaymentReject:
		return p, nil
	}
	return "", fmt.Errorf("unknown overpayment policy %q", s)
}

// Settlement is the outcome of applying one payment to a ledger row.
type Settlement struct {
	From    FeeStatus       `json:"from"`
	To      FeeStatus       `json:"to"`
	Paid    decimal.Decimal `json:"paid_amount"`
	Applied decimal.Decimal `json:"applied"`
	Excess  decimal.Decimal `json:"excess"`
}

// Settle computes the new paid amount and status for a payment of amount against a
// row. Under OverpaymentCap the excess beyond the amount due is dropped and reported;
// under OverpaymentReject it fails with ErrOverpayment.
func Settle(amount, discount, fine, paid, payment decimal.Decimal, policy OverpaymentPolicy) (Settlement, error) {
	if !payment.IsPositive() {
		return Settlement{}, NewFieldError("Settle", "amount", ErrInvalidAmount)
	}
	from := DeriveStatus(amount, discount, fine, paid)
	due := AmountDue(amount, discount, fine)
	remaining := due.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	applied, excess := payment, decimal.Zero
	if payment.GreaterThan(remaining) {
		if policy == OverpaymentReject {
			return Settlement{}, NewError("Settle", ErrOverpayment)
		}
		applied, excess = remaining, payment.Sub(remaining)
	}

	newPaid := paid.Add(applied)
	return Settlement{
		From:    from,
		To:      DeriveStatus(amount, discount, fine, newPaid),
		Paid:    newPaid,
		Applied: applied,
		Excess:  excess,
	}, nil
}
