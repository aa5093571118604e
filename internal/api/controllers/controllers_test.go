package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/services"
	"clubfees/internal/testutil"
	mem "clubfees/pkg/memcache"
	"clubfees/pkg/middleware"
	"clubfees/pkg/utils"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	TraceID string          `json:"trace_id"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	store := testutil.NewStore()
	log := zap.NewNop()

	currencies := services.NewCurrencyRegistry(services.CurrencyParams{
		Repo:   store.Currencies(),
		Cache:  mem.NewTTLCache[string, billing.CurrencyInfo](),
		Config: cfg,
		Log:    log,
	})
	ctx := context.Background()
	_, err := currencies.SeedDefaults(ctx)
	require.NoError(t, err)
	require.NoError(t, currencies.Load(ctx))

	ledger := services.NewLedgerService(services.LedgerParams{
		Fees: store.Fees(), FeeTypes: store.FeeTypes(), Currencies: currencies, Config: cfg, Log: log,
	})
	feePlans := services.NewFeePlanService(services.FeePlanParams{
		Assignments: store.Assignments(), Plans: store.Plans(), Owners: store.Owners(),
		Currencies: currencies, Ledger: ledger, Config: cfg, Log: log,
	})
	billingSvc := services.NewBillingService(services.BillingParams{
		Assignments: store.Assignments(), FeePlans: feePlans, Ledger: ledger,
		Currencies: currencies, Config: cfg, Log: log,
	})
	payments := services.NewPaymentService(services.PaymentParams{
		Payments: store.Payments(), Ledger: ledger, Currencies: currencies,
		Tx: store.Transactor(), Config: cfg, Log: log,
	})

	utils.RegisterValidators()
	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	RegisterRoutes(r, Controllers{
		Currency: NewCurrencyController(currencies),
		Plan:     NewPlanController(services.NewPlanService(store.Plans(), currencies, log)),
		FeePlan:  NewFeePlanController(feePlans),
		Billing:  NewBillingController(billingSvc, ledger),
		Payment:  NewPaymentController(payments),
		Report:   NewReportController(services.NewReportService(store.Reports(), currencies, log)),
	})
	return &api{router: r}
}

func (a *api) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type feeJSON struct {
	ID          string          `json:"id"`
	Period      string          `json:"period"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
}

func TestChargeAndPayOverHTTP(t *testing.T) {
	a := newAPI(t)
	studentID := uuid.New().String()
	clubID := uuid.New().String()

	code, env := a.do(t, http.MethodPut, "/students/"+studentID+"/fee-plan", gin.H{
		"owner_kind":     "club",
		"owner_id":       clubID,
		"custom_amount":  "80",
		"currency_code":  "MYR",
		"discount":       gin.H{"type": "percent", "value": "10"},
		"effective_from": "2025-01-01",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.NotEmpty(t, env.TraceID)

	code, env = a.do(t, http.MethodGet, "/students/"+studentID+"/billing-policy", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	policy := decode[struct {
		FormattedAmount string `json:"formatted_amount"`
		NextPeriodStart string `json:"next_period_start"`
	}](t, env)
	assert.Equal(t, "RM 80.00", policy.FormattedAmount)
	assert.Equal(t, "2025-01-01", policy.NextPeriodStart)

	code, env = a.do(t, http.MethodPost, "/students/"+studentID+"/charges", gin.H{"period": "2025-01"})
	require.Equal(t, http.StatusOK, code, env.Message)
	gen := decode[struct {
		Outcome string   `json:"outcome"`
		Fee     *feeJSON `json:"fee"`
	}](t, env)
	assert.Equal(t, "created", gen.Outcome)
	require.NotNil(t, gen.Fee)
	assert.True(t, gen.Fee.AmountDue.Equal(decimal.NewFromInt(72)))

	code, env = a.do(t, http.MethodPost, "/students/"+studentID+"/payments", gin.H{
		"student_fee_id": gen.Fee.ID,
		"amount":         "72",
		"method":         "card",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	rec := decode[struct {
		Payment struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"payment"`
		Settlement struct {
			To string `json:"to"`
		} `json:"settlement"`
	}](t, env)
	assert.Equal(t, "paid", rec.Payment.Status)
	assert.Equal(t, "paid", rec.Settlement.To)

	code, env = a.do(t, http.MethodGet, "/students/"+studentID+"/outstanding", nil)
	require.Equal(t, http.StatusOK, code)
	out := decode[struct {
		Fees []feeJSON `json:"fees"`
	}](t, env)
	assert.Empty(t, out.Fees)

	code, env = a.do(t, http.MethodPut, "/payments/"+rec.Payment.ID+"/amount", gin.H{"amount": "10"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", env.Status)

	code, env = a.do(t, http.MethodPost, "/payments/"+rec.Payment.ID+"/compensate", nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	code, _ = a.do(t, http.MethodPost, "/payments/"+rec.Payment.ID+"/compensate", gin.H{"note": "again"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(t, http.MethodGet, "/payments/"+rec.Payment.ID+"/invoice-context", nil)
	require.Equal(t, http.StatusOK, code)
	ic := decode[struct {
		Amounts map[string]string `json:"amounts"`
	}](t, env)
	assert.Equal(t, "RM 72.00", ic.Amounts["paid"])
}

func TestBindingAndValidationErrors(t *testing.T) {
	a := newAPI(t)
	studentID := uuid.New().String()

	code, env := a.do(t, http.MethodPost, "/students/"+studentID+"/charges", gin.H{"period": "2025-13"})
	assert.Equal(t, http.StatusBadRequest, code)
	fields := decode[map[string]string](t, env)
	assert.Equal(t, "period", fields["Period"])

	code, env = a.do(t, http.MethodPost, "/students/not-a-uuid/charges", gin.H{"period": "2025-01"})
	assert.Equal(t, http.StatusBadRequest, code)
	details := decode[map[string]string](t, env)
	assert.Equal(t, "student_id", details["field"])
	assert.Equal(t, "validation", details["kind"])

	code, _ = a.do(t, http.MethodPost, "/students/"+studentID+"/charges", gin.H{"period": "2025-01"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(t, http.MethodPost, "/students/"+studentID+"/charges/backfill", gin.H{"from": "2025-03", "to": "2025-01"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(t, http.MethodPut, "/owners/club/"+uuid.New().String()+"/settings", gin.H{"default_currency_code": "XYZ"})
	assert.Equal(t, http.StatusBadRequest, code)
	details = decode[map[string]string](t, env)
	assert.Equal(t, "currency_code", details["field"])
}

func TestPlanRoutes(t *testing.T) {
	a := newAPI(t)
	owner := uuid.New().String()
	body := gin.H{
		"owner_kind":     "club",
		"owner_id":       owner,
		"name":           "Juniors",
		"base_amount":    "120",
		"currency_code":  "MYR",
		"effective_from": "2025-01-01",
	}

	code, env := a.do(t, http.MethodPost, "/plans", body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	plan := decode[struct {
		ID       string `json:"id"`
		Interval string `json:"interval"`
		IsActive bool   `json:"is_active"`
	}](t, env)
	assert.Equal(t, "monthly", plan.Interval)
	assert.True(t, plan.IsActive)

	code, _ = a.do(t, http.MethodPost, "/plans", body)
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(t, http.MethodGet, "/owners/club/"+owner+"/plans?active=true", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	code, _ = a.do(t, http.MethodDelete, "/plans/"+plan.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodGet, "/plans/"+plan.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCurrencyRoutes(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(t, http.MethodGet, "/currencies/default", nil)
	require.Equal(t, http.StatusOK, code)
	def := decode[struct {
		Code string `json:"code"`
	}](t, env)
	assert.Equal(t, "MYR", def.Code)

	code, env = a.do(t, http.MethodGet, "/currencies", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 5)

	code, _ = a.do(t, http.MethodGet, "/currencies/XYZ", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOwnerSettingsRoundTrip(t *testing.T) {
	a := newAPI(t)
	path := "/owners/organization/" + uuid.New().String() + "/settings"

	code, env := a.do(t, http.MethodPut, path, gin.H{"default_currency_code": "sgd"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = a.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	settings := decode[struct {
		DefaultCurrencyCode string `json:"default_currency_code"`
	}](t, env)
	assert.Equal(t, "SGD", settings.DefaultCurrencyCode)

	code, _ = a.do(t, http.MethodGet, "/owners/league/"+uuid.New().String()+"/settings", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCollectionsReportRoute(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(t, http.MethodGet, "/billing/reports/collections?from=2025-06&to=2025-01", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	report := decode[struct {
		Range struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"range"`
		Periods []json.RawMessage `json:"periods"`
	}](t, env)
	assert.Equal(t, "2025-01", report.Range.From)
	assert.Equal(t, "2025-06", report.Range.To)
	assert.Empty(t, report.Periods)

	code, _ = a.do(t, http.MethodGet, "/billing/reports/collections?from=2025-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
