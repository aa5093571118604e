package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(amount string, from time.Time) Policy {
	return Policy{Amount: dec(amount), CurrencyCode: "MYR", Interval: IntervalMonthly, EffectiveFrom: from}
}

func period(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestChargeForMonthlyPlan(t *testing.T) {
	p := monthly("100.00", date(2025, time.January, 15))

	c, ok, err := ChargeFor(p, period("2025-01"), 2, ScheduleOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dec("100.00").Equal(c.Amount))
	assert.True(t, c.Discount.IsZero())
	assert.Equal(t, date(2025, time.January, 15), c.DueDate)
	assert.True(t, c.BillingMonth)

	_, ok, err = ChargeFor(p, period("2024-12"), 2, ScheduleOptions{})
	require.NoError(t, err)
	assert.False(t, ok, "no charge before effective_from")
}

func TestChargeForAppliesDiscount(t *testing.T) {
	p := monthly("80.00", date(2025, time.January, 1))
	p.Discount = &Discount{Type: DiscountPercent, Value: dec("10")}

	c, ok, err := ChargeFor(p, period("2025-03"), 2, ScheduleOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dec("80").Equal(c.Amount))
	assert.True(t, dec("8").Equal(c.Discount))
	assert.True(t, dec("72").Equal(c.Net()))
}

func TestDueDateClampsAndAddsGrace(t *testing.T) {
	p := monthly("10", date(2025, time.January, 31))

	c, _, err := ChargeFor(p, period("2025-02"), 2, ScheduleOptions{})
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), c.DueDate)

	c, _, err = ChargeFor(p, period("2025-03"), 2, ScheduleOptions{GraceDays: 5})
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.April, 5), c.DueDate)
}

func TestChargeForNonMonthlyIntervals(t *testing.T) {
	quarterly := monthly("300", date(2025, time.January, 15))
	quarterly.Interval = IntervalQuarterly

	expectBilling := map[string]bool{
		"2025-01": true, "2025-02": false, "2025-03": false,
		"2025-04": true, "2025-05": false, "2025-06": false, "2025-07": true,
	}
	for key, billing := range expectBilling {
		c, ok, err := ChargeFor(quarterly, period(key), 2, ScheduleOptions{Mode: LedgerMonthlyRows})
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, billing, c.BillingMonth, key)
		if billing {
			assert.True(t, dec("300").Equal(c.Amount), key)
		} else {
			assert.True(t, c.Amount.IsZero(), key)
		}

		_, ok, err = ChargeFor(quarterly, period(key), 2, ScheduleOptions{Mode: LedgerBillingMonthOnly})
		require.NoError(t, err)
		assert.Equal(t, billing, ok, key)
	}
}

func TestMonthsPerBlock(t *testing.T) {
	assert.Equal(t, 1, MonthsPerBlock(IntervalMonthly, 0))
	assert.Equal(t, 3, MonthsPerBlock(IntervalQuarterly, 0))
	assert.Equal(t, 6, MonthsPerBlock(IntervalSemester, 0))
	assert.Equal(t, 12, MonthsPerBlock(IntervalYearly, 9))
	assert.Equal(t, 2, MonthsPerBlock(IntervalCustom, 2))
}

func TestCustomIntervalBillingMonths(t *testing.T) {
	p := monthly("50", date(2025, time.March, 10))
	p.Interval = IntervalCustom
	p.IntervalCount = 2

	var billed []string
	for _, per := range PeriodsBetween(period("2025-01"), period("2025-08")) {
		if IsBillingMonth(p, per) {
			billed = append(billed, per.String())
		}
	}
	assert.Equal(t, []string{"2025-03", "2025-05", "2025-07"}, billed)
}

func TestNextBillingPeriod(t *testing.T) {
	q := monthly("1", date(2025, time.January, 15))
	q.Interval = IntervalQuarterly

	assert.Equal(t, "2025-04", NextBillingPeriod(q, period("2025-01")).String())
	assert.Equal(t, "2025-04", NextBillingPeriod(q, period("2025-02")).String())
	assert.Equal(t, "2025-07", NextBillingPeriod(q, period("2025-04")).String())
	assert.Equal(t, "2025-01", NextBillingPeriod(q, period("2024-11")).String())
}

func TestNextHintsMatchesIncrementalGeneration(t *testing.T) {
	policies := map[string]Policy{
		"monthly":   monthly("10", date(2025, time.January, 31)),
		"quarterly": {Amount: dec("10"), Interval: IntervalQuarterly, EffectiveFrom: date(2025, time.January, 15)},
		"semester":  {Amount: dec("10"), Interval: IntervalSemester, EffectiveFrom: date(2024, time.August, 29)},
		"custom":    {Amount: dec("10"), Interval: IntervalCustom, IntervalCount: 5, EffectiveFrom: date(2024, time.December, 3)},
	}
	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			hints := NextHints(p, nil, 3)
			var last *Period
			for _, per := range PeriodsBetween(Anchor(p), Anchor(p).AddMonths(23)) {
				if !IsBillingMonth(p, per) {
					continue
				}
				assert.Equal(t, per.Start(), hints.NextPeriodStart, "cache points at the period about to be billed")
				c, ok, err := ChargeFor(p, per, 2, ScheduleOptions{GraceDays: 3})
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, hints.NextDueDate, c.DueDate)

				cur := per
				last = &cur
				hints = NextHints(p, last, 3)
			}
			require.NotNil(t, last)
			assert.Equal(t, NextHints(p, last, 3), hints)
		})
	}
}
