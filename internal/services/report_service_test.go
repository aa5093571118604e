package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildCollections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	full := h.assignCustom(t, club(), "100", "2025-01-01", nil)
	partial := h.assignCustom(t, club(), "80", "2025-01-01", nil)

	jan := h.charge(t, full, "2025-01").Fee
	_, err := h.payments.RecordPayment(ctx, full, RecordPaymentInput{StudentFeeID: &jan.ID, Amount: dec("100")})
	require.NoError(t, err)
	janPartial := h.charge(t, partial, "2025-01").Fee
	_, err = h.payments.RecordPayment(ctx, partial, RecordPaymentInput{StudentFeeID: &janPartial.ID, Amount: dec("30")})
	require.NoError(t, err)
	h.charge(t, full, "2025-02")
	// unpaid standalone payments are not collections
	_, err = h.payments.RecordPayment(ctx, full, RecordPaymentInput{Period: "2025-02", Amount: dec("15")})
	require.NoError(t, err)

	report, err := h.reports.BuildCollections(ctx, ReportRange{From: period("2025-01"), To: period("2025-02")})
	require.NoError(t, err)
	require.Len(t, report.Periods, 2)

	first := report.Periods[0]
	assert.Equal(t, "2025-01", first.Period)
	assert.Equal(t, "MYR", first.CurrencyCode)
	assert.True(t, first.Billed.Equal(dec("180")))
	assert.True(t, first.Collected.Equal(dec("130")))
	assert.True(t, first.Outstanding.Equal(dec("50")))
	assert.EqualValues(t, 2, first.Charges)
	assert.EqualValues(t, 1, first.Settled)
	assert.EqualValues(t, 2, first.Payments)

	second := report.Periods[1]
	assert.Equal(t, "2025-02", second.Period)
	assert.True(t, second.Collected.IsZero())
	assert.True(t, second.Outstanding.Equal(dec("100")))

	assert.True(t, report.Collected["MYR"].Equal(dec("130")))
	assert.Equal(t, "RM 150.00", report.Formatted["MYR"]["outstanding"])
	assert.Len(t, report.RecentPayments, 2)
}

func TestBuildCollectionsCountsCompensations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	studentID := h.assignCustom(t, club(), "100", "2025-01-01", nil)
	fee := h.charge(t, studentID, "2025-01").Fee

	res, err := h.payments.RecordPayment(ctx, studentID, RecordPaymentInput{StudentFeeID: &fee.ID, Amount: dec("100")})
	require.NoError(t, err)
	_, err = h.payments.Compensate(ctx, res.Payment.ID, nil)
	require.NoError(t, err)

	report, err := h.reports.BuildCollections(ctx, ReportRange{From: period("2025-01"), To: period("2025-01")})
	require.NoError(t, err)
	require.Len(t, report.Periods, 1)
	assert.True(t, report.Periods[0].Collected.IsZero())
	assert.EqualValues(t, 2, report.Periods[0].Payments)
	// the ledger row is untouched by the compensation
	assert.True(t, report.Periods[0].Outstanding.IsZero())
}

func TestReportRangeDefaults(t *testing.T) {
	svc := NewReportService(nil, nil, zap.NewNop()).(*reportService)
	svc.now = func() time.Time { return date("2025-02-10") }

	rng := svc.normalizeRange(ReportRange{})
	assert.Equal(t, "2024-03", rng.From.String())
	assert.Equal(t, "2025-02", rng.To.String())

	rng = svc.normalizeRange(ReportRange{From: period("2025-06"), To: period("2025-01")})
	assert.Equal(t, "2025-01", rng.From.String())
	assert.Equal(t, "2025-06", rng.To.String())

	rng = svc.normalizeRange(ReportRange{To: period("2025-12")})
	assert.Equal(t, "2025-01", rng.From.String())
}
