package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerMode decides what non-monthly policies write for months between billing months.
type LedgerMode string

const (
	// LedgerMonthlyRows keeps one row per month; only the first month of each block
	// carries an amount.
	LedgerMonthlyRows LedgerMode = "monthly_rows"
	// LedgerBillingMonthOnly writes rows only for billing months.
	LedgerBillingMonthOnly LedgerMode = "billing_month_only"
)

func ParseLedgerMode(s string) (LedgerMode, error) {
	switch m := LedgerMode(s); m {
	case "":
		return LedgerMonthlyRows, nil
	case LedgerMonthlyRows, LedgerBillingMonthOnly:
		return m, nil
	}
	return "", fmt.Errorf("unknown ledger mode %q", s)
}

type ScheduleOptions struct {
	GraceDays int
	Mode      LedgerMode
}

// Charge is what the scheduler wants the ledger to hold for one period.
type Charge struct {
	Period       Period          `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
	Discount     decimal.Decimal `json:"discount"`
	DueDate      time.Time       `json:"due_date"`
	BillingMonth bool            `json:"billing_month"`
}

// Net is the amount owed before fines.
func (c Charge) Net() decimal.Decimal {
	return c.Amount.Sub(c.Discount)
}

// Anchor is the first period the policy bills.
func Anchor(p Policy) Period {
	return PeriodOf(p.EffectiveFrom)
}

// IsBillingMonth reports whether period opens a billing block for p.
func IsBillingMonth(p Policy, period Period) bool {
	k := period.MonthsSince(Anchor(p))
	if k < 0 {
		return false
	}
	return k%MonthsPerBlock(p.Interval, p.IntervalCount) == 0
}

// DueDate is effective_from's day-of-month inside period, clamped to the month's last
// day, plus the grace offset.
func DueDate(p Policy, period Period, graceDays int) time.Time {
	return period.DayIn(p.EffectiveFrom.Day()).AddDate(0, 0, graceDays)
}

// ChargeFor computes the ledger row for period. The bool is false when no row should
// exist: before the anchor, or outside a billing month in LedgerBillingMonthOnly mode.
func ChargeFor(p Policy, period Period, places int32, opts ScheduleOptions) (Charge, bool, error) {
	if period.Before(Anchor(p)) {
		return Charge{}, false, nil
	}
	billing := IsBillingMonth(p, period)
	if !billing && opts.Mode == LedgerBillingMonthOnly {
		return Charge{}, false, nil
	}

	c := Charge{
		Period:       period,
		Amount:       decimal.Zero,
		Discount:     decimal.Zero,
		DueDate:      DueDate(p, period, opts.GraceDays),
		BillingMonth: billing,
	}
	if !billing {
		return c, true, nil
	}

	discount, err := DiscountAmount(p.Amount, p.Discount, places)
	if err != nil {
		return Charge{}, false, err
	}
	c.Amount = RoundHalfUp(p.Amount, places)
	c.Discount = discount
	return c, true, nil
}

// NextBillingPeriod is the first billing month strictly after last.
func NextBillingPeriod(p Policy, last Period) Period {
	anchor := Anchor(p)
	if last.Before(anchor) {
		return anchor
	}
	n := MonthsPerBlock(p.Interval, p.IntervalCount)
	k := last.MonthsSince(anchor)
	return anchor.AddMonths((k/n + 1) * n)
}

// Hints are the cached scheduling fields stored on an assignment.
type Hints struct {
	NextPeriodStart time.Time `json:"next_period_start"`
	NextDueDate     time.Time `json:"next_due_date"`
}

// NextHints recomputes the scheduling cache from the policy alone. last is the most
// recent generated period, nil when nothing has been generated yet.
func NextHints(p Policy, last *Period, graceDays int) Hints {
	next := Anchor(p)
	if last != nil {
		next = NextBillingPeriod(p, *last)
	}
	return Hints{
		NextPeriodStart: next.Start(),
		NextDueDate:     DueDate(p, next, graceDays),
	}
}

// PeriodsBetween lists from..to inclusive; empty when to is before from.
func PeriodsBetween(from, to Period) []Period {
	if to.Before(from) {
		return nil
	}
	out := make([]Period, 0, to.MonthsSince(from)+1)
	for p := from; !p.After(to); p = p.AddMonths(1) {
		out = append(out, p)
	}
	return out
}
