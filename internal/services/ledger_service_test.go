package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
)

func seededFee(t *testing.T, h *harness, amount string) *db_models.StudentFee {
	t.Helper()
	studentID := h.assignCustom(t, club(), amount, "2025-01-01", nil)
	return h.charge(t, studentID, "2025-01").Fee
}

func TestApplyPaymentPartialThenPaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fee := seededFee(t, h, "100")

	s, err := h.ledger.ApplyPayment(ctx, fee.ID, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, billing.FeePending, s.From)
	assert.Equal(t, billing.FeePartial, s.To)
	assert.True(t, s.Paid.Equal(dec("50")))

	s, err = h.ledger.ApplyPayment(ctx, fee.ID, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, billing.FeePaid, s.To)
	assert.True(t, s.Excess.IsZero())
}

func TestApplyPaymentOverpaymentCapped(t *testing.T) {
	h := newHarness(t)
	fee := seededFee(t, h, "100")

	s, err := h.ledger.ApplyPayment(context.Background(), fee.ID, dec("130"))
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(dec("100")))
	assert.True(t, s.Applied.Equal(dec("100")))
	assert.True(t, s.Excess.Equal(dec("30")))
	assert.Equal(t, billing.FeePaid, s.To)
}

func TestApplyPaymentOverpaymentRejected(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Billing.OverpaymentPolicy = billing.OverpaymentReject
	})
	fee := seededFee(t, h, "100")

	_, err := h.ledger.ApplyPayment(context.Background(), fee.ID, dec("130"))
	assert.ErrorIs(t, err, billing.ErrOverpayment)
	assert.Equal(t, billing.KindPolicy, billing.KindOf(err))

	stored, _ := h.store.Fee(fee.ID)
	assert.True(t, stored.PaidAmount.IsZero())
}

func TestApplyPaymentRetriesAfterConcurrentWrite(t *testing.T) {
	h := newHarness(t)
	fee := seededFee(t, h, "100")

	raced := false
	h.store.BeforeCompareAndSet = func(stored *db_models.StudentFee) {
		if !raced {
			raced = true
			stored.PaidAmount = stored.PaidAmount.Add(dec("20"))
		}
	}

	s, err := h.ledger.ApplyPayment(context.Background(), fee.ID, dec("30"))
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(dec("50")))

	stored, _ := h.store.Fee(fee.ID)
	assert.True(t, stored.PaidAmount.Equal(dec("50")))
	assert.Equal(t, string(billing.FeePartial), stored.Status)
}

func TestApplyPaymentGivesUpAfterSecondConflict(t *testing.T) {
	h := newHarness(t)
	fee := seededFee(t, h, "100")
	h.store.BeforeCompareAndSet = func(stored *db_models.StudentFee) {
		stored.PaidAmount = stored.PaidAmount.Add(dec("1"))
	}

	_, err := h.ledger.ApplyPayment(context.Background(), fee.ID, dec("10"))
	assert.ErrorIs(t, err, billing.ErrConcurrentUpdate)
}

func TestRecordFine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fee := seededFee(t, h, "100")

	_, err := h.ledger.ApplyPayment(ctx, fee.ID, dec("100"))
	require.NoError(t, err)

	_, err = h.ledger.RecordFine(ctx, fee.ID, dec("5"))
	assert.ErrorIs(t, err, billing.ErrChargeSettled)

	other := seededFee(t, h, "40")
	updated, err := h.ledger.RecordFine(ctx, other.ID, dec("5"))
	require.NoError(t, err)
	assert.True(t, updated.Fine.Equal(dec("5")))
	assert.True(t, updated.AmountDue().Equal(dec("45")))

	_, err = h.ledger.RecordFine(ctx, other.ID, dec("0"))
	assert.Equal(t, billing.KindValidation, billing.KindOf(err))
}

func TestFineOnPartialRowRaisesOutstanding(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fee := seededFee(t, h, "100")

	_, err := h.ledger.ApplyPayment(ctx, fee.ID, dec("60"))
	require.NoError(t, err)
	updated, err := h.ledger.RecordFine(ctx, fee.ID, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, string(billing.FeePartial), updated.Status)
	assert.True(t, updated.Outstanding().Equal(dec("50")))
}

func TestOutstandingGroupsByCurrency(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := club()
	studentID := h.assignCustom(t, owner, "100", "2025-01-01", nil)
	h.charge(t, studentID, "2025-01")
	feb := h.charge(t, studentID, "2025-02")
	h.charge(t, studentID, "2025-03")

	_, err := h.ledger.ApplyPayment(ctx, feb.Fee.ID, dec("100"))
	require.NoError(t, err)
	jan, err := h.ledger.FindCharge(ctx, studentID, feb.Fee.FeeTypeID, period("2025-01"))
	require.NoError(t, err)
	_, err = h.ledger.ApplyPayment(ctx, jan.ID, dec("25.5"))
	require.NoError(t, err)

	out, err := h.ledger.Outstanding(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, out.Fees, 2)
	assert.True(t, out.Totals["MYR"].Equal(dec("174.5")))
	assert.Equal(t, "RM 174.50", out.Formatted["MYR"])
}

func TestListStudentFeesBounds(t *testing.T) {
	h := newHarness(t)
	studentID := h.assignCustom(t, club(), "100", "2025-01-01", nil)
	for _, p := range []string{"2025-01", "2025-02", "2025-03", "2025-04"} {
		h.charge(t, studentID, p)
	}

	from, to := period("2025-02"), period("2025-03")
	fees, err := h.ledger.ListStudentFees(context.Background(), studentID, &from, &to)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, "2025-02", fees[0].Period)
	assert.Equal(t, "2025-03", fees[1].Period)
}

func TestGetFeeNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.GetFee(context.Background(), uuid.New())
	assert.Equal(t, billing.KindNotFound, billing.KindOf(err))
}
