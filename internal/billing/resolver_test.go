package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testPlan() *PlanTerms {
	return &PlanTerms{
		ID:            uuid.New(),
		BaseAmount:    dec("100.00"),
		CurrencyCode:  "MYR",
		Interval:      IntervalYearly,
		Discount:      &Discount{Type: DiscountFixed, Value: dec("5")},
		EffectiveFrom: date(2024, time.September, 1),
	}
}

func TestResolveAmount(t *testing.T) {
	plan := testPlan()

	t.Run("custom amount wins over plan", func(t *testing.T) {
		got, err := Resolve(ResolveInput{
			Assignment: Assignment{CustomAmount: ptrDec("80"), EffectiveFrom: date(2025, 1, 15)},
			Plan:       plan,
		})
		require.NoError(t, err)
		assert.True(t, dec("80").Equal(got.Amount))
	})

	t.Run("plan base amount when no custom amount", func(t *testing.T) {
		got, err := Resolve(ResolveInput{
			Assignment: Assignment{EffectiveFrom: date(2025, 1, 15)},
			Plan:       plan,
		})
		require.NoError(t, err)
		assert.True(t, dec("100").Equal(got.Amount))
	})

	t.Run("neither is a configuration error", func(t *testing.T) {
		_, err := Resolve(ResolveInput{
			Assignment:            Assignment{EffectiveFrom: date(2025, 1, 15)},
			GlobalDefaultCurrency: "MYR",
		})
		require.ErrorIs(t, err, ErrNoAmountConfigured)
		assert.Equal(t, KindConfiguration, KindOf(err))
	})
}

func TestResolveCurrencyFallsBackFieldByField(t *testing.T) {
	plan := testPlan()
	base := Assignment{CustomAmount: ptrDec("10"), EffectiveFrom: date(2025, 1, 1)}

	tests := []struct {
		name   string
		in     ResolveInput
		want   string
		errIs  error
		mutate func(*ResolveInput)
	}{
		{name: "assignment", want: "USD", mutate: func(in *ResolveInput) {
			in.Assignment.CurrencyCode = "usd"
			in.Plan = plan
		}},
		{name: "plan", want: "MYR", mutate: func(in *ResolveInput) {
			in.Plan = plan
			in.OwnerDefaultCurrency = "SGD"
		}},
		{name: "owner default", want: "SGD", mutate: func(in *ResolveInput) {
			in.OwnerDefaultCurrency = "SGD"
			in.GlobalDefaultCurrency = "EUR"
		}},
		{name: "global default", want: "EUR", mutate: func(in *ResolveInput) {
			in.GlobalDefaultCurrency = "EUR"
		}},
		{name: "none", errIs: ErrNoDefaultConfigured, mutate: func(in *ResolveInput) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ResolveInput{Assignment: base}
			tt.mutate(&in)
			got, err := Resolve(in)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.CurrencyCode)
		})
	}
}

func TestResolveIntervalIgnoresPlan(t *testing.T) {
	plan := testPlan()

	got, err := Resolve(ResolveInput{
		Assignment: Assignment{EffectiveFrom: date(2025, 1, 1)},
		Plan:       plan,
	})
	require.NoError(t, err)
	assert.Equal(t, IntervalMonthly, got.Interval)

	got, err = Resolve(ResolveInput{
		Assignment: Assignment{Interval: IntervalCustom, IntervalCount: 2, EffectiveFrom: date(2025, 1, 1)},
		Plan:       plan,
	})
	require.NoError(t, err)
	assert.Equal(t, IntervalCustom, got.Interval)
	assert.Equal(t, 2, got.IntervalCount)

	got, err = Resolve(ResolveInput{
		Assignment: Assignment{Interval: IntervalQuarterly, IntervalCount: 7, EffectiveFrom: date(2025, 1, 1)},
		Plan:       plan,
	})
	require.NoError(t, err)
	assert.Zero(t, got.IntervalCount, "count is ignored unless custom")

	_, err = Resolve(ResolveInput{
		Assignment: Assignment{Interval: IntervalCustom, EffectiveFrom: date(2025, 1, 1)},
		Plan:       plan,
	})
	assert.ErrorIs(t, err, ErrMissingIntervalCount)
}

func TestResolveDiscount(t *testing.T) {
	plan := testPlan()

	got, err := Resolve(ResolveInput{
		Assignment: Assignment{
			CustomAmount:  ptrDec("80"),
			Discount:      &Discount{Type: DiscountPercent, Value: dec("10")},
			EffectiveFrom: date(2025, 1, 1),
		},
		Plan: plan,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Discount)
	assert.Equal(t, DiscountPercent, got.Discount.Type)

	got, err = Resolve(ResolveInput{
		Assignment: Assignment{EffectiveFrom: date(2025, 1, 1)},
		Plan:       plan,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Discount)
	assert.Equal(t, DiscountFixed, got.Discount.Type)

	got, err = Resolve(ResolveInput{
		Assignment:            Assignment{CustomAmount: ptrDec("80"), EffectiveFrom: date(2025, 1, 1)},
		GlobalDefaultCurrency: "MYR",
	})
	require.NoError(t, err)
	assert.Nil(t, got.Discount)
}

func TestResolveEffectiveFrom(t *testing.T) {
	plan := testPlan()

	got, err := Resolve(ResolveInput{Assignment: Assignment{}, Plan: plan})
	require.NoError(t, err)
	assert.Equal(t, plan.EffectiveFrom, got.EffectiveFrom)

	_, err = Resolve(ResolveInput{
		Assignment:            Assignment{CustomAmount: ptrDec("1")},
		GlobalDefaultCurrency: "MYR",
	})
	require.ErrorIs(t, err, ErrNoEffectiveDate)
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestResolveDoesNotAliasInputs(t *testing.T) {
	plan := testPlan()
	got, err := Resolve(ResolveInput{Assignment: Assignment{EffectiveFrom: date(2025, 1, 1)}, Plan: plan})
	require.NoError(t, err)

	got.Discount.Value = dec("999")
	assert.True(t, dec("5").Equal(plan.Discount.Value))
}
