package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/testutil"
	mem "clubfees/pkg/memcache"
)

// harness wires every service over one in-memory store, the way the fx graph does.
type harness struct {
	store      *testutil.Store
	cfg        *config.Config
	currencies CurrencyRegistry
	plans      PlanServiceInterface
	ledger     LedgerServiceInterface
	feePlans   FeePlanServiceInterface
	billing    BillingServiceInterface
	payments   PaymentService
	reports    ReportService
}

func newHarness(t *testing.T, tweak ...func(cfg *config.Config)) *harness {
	t.Helper()
	cfg := testutil.Config()
	for _, fn := range tweak {
		fn(cfg)
	}
	store := testutil.NewStore()
	log := zap.NewNop()

	currencies := NewCurrencyRegistry(CurrencyParams{
		Repo:   store.Currencies(),
		Cache:  mem.NewTTLCache[string, billing.CurrencyInfo](),
		Config: cfg,
		Log:    log,
	})
	ctx := context.Background()
	_, err := currencies.SeedDefaults(ctx)
	require.NoError(t, err)
	require.NoError(t, currencies.Load(ctx))

	ledger := NewLedgerService(LedgerParams{
		Fees:       store.Fees(),
		FeeTypes:   store.FeeTypes(),
		Currencies: currencies,
		Config:     cfg,
		Log:        log,
	})
	feePlans := NewFeePlanService(FeePlanParams{
		Assignments: store.Assignments(),
		Plans:       store.Plans(),
		Owners:      store.Owners(),
		Currencies:  currencies,
		Ledger:      ledger,
		Config:      cfg,
		Log:         log,
	})
	return &harness{
		store:      store,
		cfg:        cfg,
		currencies: currencies,
		plans:      NewPlanService(store.Plans(), currencies, log),
		ledger:     ledger,
		feePlans:   feePlans,
		billing: NewBillingService(BillingParams{
			Assignments: store.Assignments(),
			FeePlans:    feePlans,
			Ledger:      ledger,
			Currencies:  currencies,
			Config:      cfg,
			Log:         log,
		}),
		reports: NewReportService(store.Reports(), currencies, log),
		payments: NewPaymentService(PaymentParams{
			Payments:   store.Payments(),
			Ledger:     ledger,
			Currencies: currencies,
			Tx:         store.Transactor(),
			Config:     cfg,
			Log:        log,
		}),
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func period(s string) billing.Period {
	p, err := billing.ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func club() billing.Owner {
	return billing.Owner{Kind: billing.OwnerClub, ID: uuid.New()}
}

// assignCustom gives a student a custom monthly amount in MYR.
func (h *harness) assignCustom(t *testing.T, owner billing.Owner, amount string, from string, discount *billing.Discount) uuid.UUID {
	t.Helper()
	studentID := uuid.New()
	custom := dec(amount)
	_, err := h.feePlans.UpsertAssignment(context.Background(), studentID, AssignmentInput{
		Owner:         owner,
		CustomAmount:  &custom,
		CurrencyCode:  "MYR",
		Interval:      billing.IntervalMonthly,
		Discount:      discount,
		EffectiveFrom: date(from),
		IsActive:      true,
	})
	require.NoError(t, err)
	return studentID
}

// charge generates one period for a student and returns the row.
func (h *harness) charge(t *testing.T, studentID uuid.UUID, p string) *GenerateResult {
	t.Helper()
	res, err := h.billing.GenerateForStudent(context.Background(), studentID, period(p))
	require.NoError(t, err)
	return res
}
