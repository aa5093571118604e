package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
)

type PaymentServiceSuite struct {
	suite.Suite
	h         *harness
	ctx       context.Context
	studentID uuid.UUID
	fee       *db_models.StudentFee
}

func (s *PaymentServiceSuite) SetupTest() {
	s.h = newHarness(s.T())
	s.h.payments.(*paymentService).now = func() time.Time { return date("2025-01-20") }
	s.ctx = context.Background()
	s.studentID = s.h.assignCustom(s.T(), club(), "100", "2025-01-15", nil)
	s.fee = s.h.charge(s.T(), s.studentID, "2025-01").Fee
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) TestLinkedPaymentDefaultsToPaid() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("50"),
		Method:       db_models.MethodBankTransfer,
		BankTransfer: map[string]any{"bank": "Maybank", "reference": "TX-1"},
	})
	s.Require().NoError(err)

	p := res.Payment
	s.Equal(db_models.PaymentPaid, p.Status)
	s.Equal("2025-01", p.Period)
	s.Equal("MYR", p.CurrencyCode)
	s.Require().NotNil(p.PayDate)
	s.Equal(date("2025-01-20"), *p.PayDate)
	s.Require().NotNil(p.DueDate)
	s.Equal(date("2025-01-15"), *p.DueDate)
	s.False(p.IsStandalone())

	s.Require().NotNil(res.Settlement)
	s.Equal(billing.FeePartial, res.Settlement.To)
}

func (s *PaymentServiceSuite) TestLinkByPeriodAndFeeType() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		FeeTypeID: &s.fee.FeeTypeID,
		Period:    "2025-01",
		Amount:    dec("100"),
	})
	s.Require().NoError(err)
	s.Equal(s.fee.ID, *res.Payment.StudentFeeID)
	s.Equal(billing.FeePaid, res.Settlement.To)
}

func (s *PaymentServiceSuite) TestStandalonePaymentLeavesLedgerAlone() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		Period: "2025-01",
		Amount: dec("30"),
	})
	s.Require().NoError(err)
	s.True(res.Payment.IsStandalone())
	s.Equal(db_models.PaymentUnpaid, res.Payment.Status)
	s.Equal("MYR", res.Payment.CurrencyCode)
	s.Nil(res.Settlement)

	_, err = s.h.payments.MarkPaid(s.ctx, res.Payment.ID, MarkPaidInput{})
	s.Require().NoError(err)

	stored, _ := s.h.store.Fee(s.fee.ID)
	s.True(stored.PaidAmount.IsZero())
}

func (s *PaymentServiceSuite) TestRejectsInvalidInput() {
	_, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("0"),
	})
	s.Equal(billing.KindValidation, billing.KindOf(err))

	_, err = s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("10"),
		Method:       "cheque",
	})
	s.ErrorIs(err, billing.ErrInvalidValue)

	_, err = s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("10"),
		CurrencyCode: "USD",
	})
	s.ErrorIs(err, billing.ErrCurrencyMismatch)

	_, err = s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Period:       "2025-02",
		Amount:       dec("10"),
	})
	s.ErrorIs(err, billing.ErrPeriodMismatch)
	s.Equal(billing.KindValidation, billing.KindOf(err))

	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Period:       "2025-01",
		Amount:       dec("10"),
		Status:       db_models.PaymentUnpaid,
	})
	s.Require().NoError(err)
	s.Equal("2025-01", res.Payment.Period)

	_, err = s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		Period:       "2025-01",
		Amount:       dec("10"),
		CurrencyCode: "XYZ",
	})
	s.Equal(billing.KindValidation, billing.KindOf(err))

	_, err = s.h.payments.RecordPayment(s.ctx, uuid.New(), RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("10"),
	})
	s.Equal(billing.KindNotFound, billing.KindOf(err))
}

func (s *PaymentServiceSuite) TestMarkPaidIsOneWay() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("100"),
		Status:       db_models.PaymentUnpaid,
	})
	s.Require().NoError(err)
	s.Nil(res.Settlement)

	amended, err := s.h.payments.AmendAmount(s.ctx, res.Payment.ID, dec("60"))
	s.Require().NoError(err)
	s.True(amended.Amount.Equal(dec("60")))

	txID := "TX-9"
	paid, err := s.h.payments.MarkPaid(s.ctx, res.Payment.ID, MarkPaidInput{TransactionID: &txID})
	s.Require().NoError(err)
	s.Equal(db_models.PaymentPaid, paid.Payment.Status)
	s.Equal(billing.FeePartial, paid.Settlement.To)
	s.True(paid.Settlement.Paid.Equal(dec("60")))

	_, err = s.h.payments.MarkPaid(s.ctx, res.Payment.ID, MarkPaidInput{})
	s.ErrorIs(err, billing.ErrPaymentFinal)
	_, err = s.h.payments.AmendAmount(s.ctx, res.Payment.ID, dec("70"))
	s.ErrorIs(err, billing.ErrPaymentFinal)

	stored, _ := s.h.store.Fee(s.fee.ID)
	s.True(stored.PaidAmount.Equal(dec("60")))
}

func (s *PaymentServiceSuite) TestRejectedOverpaymentRecordsNothing() {
	h := newHarness(s.T(), func(cfg *config.Config) {
		cfg.Billing.OverpaymentPolicy = billing.OverpaymentReject
	})
	studentID := h.assignCustom(s.T(), club(), "100", "2025-01-01", nil)
	fee := h.charge(s.T(), studentID, "2025-01").Fee

	_, err := h.payments.RecordPayment(s.ctx, studentID, RecordPaymentInput{
		StudentFeeID: &fee.ID,
		Amount:       dec("150"),
	})
	s.ErrorIs(err, billing.ErrOverpayment)

	payments, err := h.payments.ListPayments(s.ctx, studentID)
	s.Require().NoError(err)
	s.Empty(payments)
}

func (s *PaymentServiceSuite) TestCompensate() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("100"),
	})
	s.Require().NoError(err)

	note := "entered twice"
	comp, err := s.h.payments.Compensate(s.ctx, res.Payment.ID, &note)
	s.Require().NoError(err)
	s.True(comp.Amount.Equal(dec("-100")))
	s.Equal(db_models.PaymentPaid, comp.Status)
	s.Equal(res.Payment.ID, *comp.CompensatesPaymentID)

	original, err := s.h.payments.GetPayment(s.ctx, res.Payment.ID)
	s.Require().NoError(err)
	s.True(original.Amount.Equal(dec("100")))
	stored, _ := s.h.store.Fee(s.fee.ID)
	s.Equal(string(billing.FeePaid), stored.Status)

	_, err = s.h.payments.Compensate(s.ctx, res.Payment.ID, nil)
	s.ErrorIs(err, billing.ErrAlreadyCompensated)
	_, err = s.h.payments.Compensate(s.ctx, comp.ID, nil)
	s.ErrorIs(err, billing.ErrPaymentFinal)
}

func (s *PaymentServiceSuite) TestCompensateRequiresPaid() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		Period: "2025-01",
		Amount: dec("10"),
	})
	s.Require().NoError(err)

	_, err = s.h.payments.Compensate(s.ctx, res.Payment.ID, nil)
	s.ErrorIs(err, billing.ErrPaymentNotPaid)
}

func (s *PaymentServiceSuite) TestAttachmentLockedOncePaid() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("40"),
		Status:       db_models.PaymentUnpaid,
	})
	s.Require().NoError(err)

	first, err := s.h.payments.AttachProof(s.ctx, res.Payment.ID, FileMetadata{FileRef: "s3://proofs/a.pdf", SizeBytes: 10})
	s.Require().NoError(err)
	second, err := s.h.payments.AttachProof(s.ctx, res.Payment.ID, FileMetadata{FileRef: "s3://proofs/b.pdf", SizeBytes: 20})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	got, err := s.h.payments.GetPayment(s.ctx, res.Payment.ID)
	s.Require().NoError(err)
	s.Equal("s3://proofs/b.pdf", got.Attachment.FileRef)

	_, err = s.h.payments.MarkPaid(s.ctx, res.Payment.ID, MarkPaidInput{})
	s.Require().NoError(err)
	_, err = s.h.payments.AttachProof(s.ctx, res.Payment.ID, FileMetadata{FileRef: "s3://proofs/c.pdf"})
	s.ErrorIs(err, billing.ErrAttachmentFinal)
}

func (s *PaymentServiceSuite) TestInvoiceContext() {
	res, err := s.h.payments.RecordPayment(s.ctx, s.studentID, RecordPaymentInput{
		StudentFeeID: &s.fee.ID,
		Amount:       dec("50"),
	})
	s.Require().NoError(err)

	ic, err := s.h.payments.InvoiceContext(s.ctx, res.Payment.ID)
	s.Require().NoError(err)
	s.Equal("RM", ic.Currency.Symbol)
	s.Require().NotNil(ic.Fee)
	s.Equal("RM 50.00", ic.Amounts["payment"])
	s.Equal("RM 100.00", ic.Amounts["amount_due"])
	s.Equal("RM 50.00", ic.Amounts["outstanding"])
}
