package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

// RecordPaymentInput links to a ledger row through StudentFeeID, or through Period
// plus FeeTypeID. With neither the payment is standalone.
type RecordPaymentInput struct {
	StudentFeeID  *uuid.UUID
	FeeTypeID     *uuid.UUID
	Period        string
	Amount        decimal.Decimal
	Method        db_models.PaymentMethod
	Status        db_models.PaymentStatus // empty: paid when linked, unpaid when standalone
	TransactionID *string
	PayDate       *time.Time
	DueDate       *time.Time
	CurrencyCode  string
	BankTransfer  map[string]any
	Note          *string
}

type MarkPaidInput struct {
	PayDate       *time.Time
	TransactionID *string
}

// FileMetadata describes a proof-of-payment file stored elsewhere.
type FileMetadata struct {
	FileRef      string
	OriginalName string
	ContentType  string
	SizeBytes    int64
}

// PaymentResult is a stored payment and, when it reached the ledger, the settlement.
type PaymentResult struct {
	Payment    *db_models.Payment
	Settlement *billing.Settlement
}

// InvoiceContext is everything an invoice renderer needs for one payment.
type InvoiceContext struct {
	Payment    *db_models.Payment
	Fee        *db_models.StudentFee
	Attachment *db_models.PaymentAttachment
	Currency   billing.CurrencyInfo
	Amounts    map[string]string
}

type PaymentService interface {
	RecordPayment(ctx context.Context, studentID uuid.UUID, in RecordPaymentInput) (*PaymentResult, error)
	MarkPaid(ctx context.Context, paymentID uuid.UUID, in MarkPaidInput) (*PaymentResult, error)
	AmendAmount(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal) (*db_models.Payment, error)
	Compensate(ctx context.Context, paymentID uuid.UUID, note *string) (*db_models.Payment, error)
	AttachProof(ctx context.Context, paymentID uuid.UUID, file FileMetadata) (*db_models.PaymentAttachment, error)
	InvoiceContext(ctx context.Context, paymentID uuid.UUID) (*InvoiceContext, error)
	ListPayments(ctx context.Context, studentID uuid.UUID) ([]db_models.Payment, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*db_models.Payment, error)
}

type PaymentParams struct {
	fx.In

	Payments   repositories.IPaymentRepository
	Ledger     LedgerServiceInterface
	Currencies CurrencyRegistry
	Tx         infra.Transactor
	Config     *config.Config
	Log        *zap.Logger
}

type paymentService struct {
	payments   repositories.IPaymentRepository
	ledger     LedgerServiceInterface
	currencies CurrencyRegistry
	tx         infra.Transactor
	cfg        config.PaymentConfig
	now        func() time.Time
	log        *zap.Logger
}

func NewPaymentService(p PaymentParams) PaymentService {
	return &paymentService{
		payments:   p.Payments,
		ledger:     p.Ledger,
		currencies: p.Currencies,
		tx:         p.Tx,
		cfg:        p.Config.Payment,
		now:        time.Now,
		log:        p.Log.Named("payment.service"),
	}
}

func (p *paymentService) RecordPayment(ctx context.Context, studentID uuid.UUID, in RecordPaymentInput) (*PaymentResult, error) {
	const op = "PaymentService.RecordPayment"
	if studentID == uuid.Nil {
		return nil, billing.NewFieldError(op, "student_id", billing.ErrRequired)
	}
	if !in.Amount.IsPositive() {
		return nil, billing.NewFieldError(op, "amount", billing.ErrInvalidAmount)
	}
	if in.Method == "" {
		in.Method = db_models.MethodCash
	}
	if !in.Method.Valid() {
		return nil, billing.NewFieldError(op, "method", billing.ErrInvalidValue)
	}

	fee, err := p.linkedFee(ctx, op, studentID, in)
	if err != nil {
		return nil, err
	}

	payment := &db_models.Payment{
		StudentID:     studentID,
		Amount:        in.Amount,
		Method:        in.Method,
		Status:        in.Status,
		TransactionID: in.TransactionID,
		PayDate:       datePtr(in.PayDate),
		DueDate:       datePtr(in.DueDate),
		BankTransfer:  in.BankTransfer,
		Note:          in.Note,
	}

	if fee != nil {
		if in.Period != "" {
			period, err := billing.ParsePeriod(in.Period)
			if err != nil {
				return nil, err
			}
			if period.String() != fee.Period {
				return nil, billing.NewFieldError(op, "period", billing.ErrPeriodMismatch)
			}
		}
		payment.StudentFeeID = &fee.ID
		payment.Period = fee.Period
		if payment.DueDate == nil {
			due := fee.DueDate
			payment.DueDate = &due
		}
		if in.CurrencyCode != "" && billing.NormalizeCurrencyCode(in.CurrencyCode) != fee.CurrencyCode {
			return nil, billing.NewFieldError(op, "currency_code", billing.ErrCurrencyMismatch)
		}
		payment.CurrencyCode = fee.CurrencyCode
		if payment.Status == "" {
			payment.Status = db_models.PaymentPaid
		}
	} else {
		period, err := billing.ParsePeriod(in.Period)
		if err != nil {
			return nil, err
		}
		payment.Period = period.String()
		code, err := p.currencyFor(ctx, op, in.CurrencyCode)
		if err != nil {
			return nil, err
		}
		payment.CurrencyCode = code
		if payment.Status == "" {
			payment.Status = db_models.PaymentUnpaid
		}
	}
	if payment.Status != db_models.PaymentPaid && payment.Status != db_models.PaymentUnpaid {
		return nil, billing.NewFieldError(op, "status", billing.ErrInvalidValue)
	}
	if payment.Status == db_models.PaymentPaid && payment.PayDate == nil {
		today := billing.DateOnly(p.now())
		payment.PayDate = &today
	}

	result := &PaymentResult{Payment: payment}
	err = p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := p.payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if payment.Status == db_models.PaymentPaid && fee != nil {
			s, err := p.ledger.ApplyPayment(ctx, fee.ID, payment.Amount)
			if err != nil {
				return err
			}
			result.Settlement = &s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("status", string(payment.Status)),
		zap.Bool("standalone", payment.IsStandalone()))
	return result, nil
}

func (p *paymentService) MarkPaid(ctx context.Context, paymentID uuid.UUID, in MarkPaidInput) (*PaymentResult, error) {
	const op = "PaymentService.MarkPaid"
	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == db_models.PaymentPaid {
		return nil, billing.NewError(op, billing.ErrPaymentFinal)
	}

	payDate := billing.DateOnly(p.now())
	if in.PayDate != nil {
		payDate = billing.DateOnly(*in.PayDate)
	}

	result := &PaymentResult{Payment: payment}
	err = p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := p.payments.MarkPaid(ctx, payment.ID, payDate, in.TransactionID); err != nil {
			return err
		}
		if payment.StudentFeeID != nil {
			s, err := p.ledger.ApplyPayment(ctx, *payment.StudentFeeID, payment.Amount)
			if err != nil {
				return err
			}
			result.Settlement = &s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = db_models.PaymentPaid
	payment.PayDate = &payDate
	if in.TransactionID != nil {
		payment.TransactionID = in.TransactionID
	}
	p.log.Info("payment marked paid", zap.String("payment_id", paymentID.String()))
	return result, nil
}

func (p *paymentService) AmendAmount(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal) (*db_models.Payment, error) {
	const op = "PaymentService.AmendAmount"
	if !amount.IsPositive() {
		return nil, billing.NewFieldError(op, "amount", billing.ErrInvalidAmount)
	}
	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == db_models.PaymentPaid {
		return nil, billing.NewError(op, billing.ErrPaymentFinal)
	}
	if err := p.payments.UpdateAmount(ctx, paymentID, amount); err != nil {
		return nil, err
	}
	payment.Amount = amount
	return payment, nil
}

// Compensate appends a paid payment with the negated amount. The original payment and
// the ledger row stay as they are.
func (p *paymentService) Compensate(ctx context.Context, paymentID uuid.UUID, note *string) (*db_models.Payment, error) {
	const op = "PaymentService.Compensate"
	original, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if original.Status != db_models.PaymentPaid {
		return nil, billing.NewError(op, billing.ErrPaymentNotPaid)
	}
	if original.CompensatesPaymentID != nil {
		return nil, billing.NewError(op, billing.ErrPaymentFinal)
	}
	existing, err := p.payments.FindCompensation(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find compensation: %w", err)
	}
	if existing != nil {
		return nil, billing.NewError(op, billing.ErrAlreadyCompensated)
	}

	today := billing.DateOnly(p.now())
	compensation := &db_models.Payment{
		StudentID:            original.StudentID,
		StudentFeeID:         original.StudentFeeID,
		Period:               original.Period,
		Amount:               original.Amount.Neg(),
		Method:               original.Method,
		Status:               db_models.PaymentPaid,
		PayDate:              &today,
		CurrencyCode:         original.CurrencyCode,
		Note:                 note,
		CompensatesPaymentID: &original.ID,
	}
	if err := p.payments.Create(ctx, compensation); err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, billing.NewError(op, billing.ErrAlreadyCompensated)
		}
		return nil, fmt.Errorf("create compensation: %w", err)
	}

	p.log.Info("payment compensated",
		zap.String("payment_id", paymentID.String()),
		zap.String("compensation_id", compensation.ID.String()))
	return compensation, nil
}

func (p *paymentService) AttachProof(ctx context.Context, paymentID uuid.UUID, file FileMetadata) (*db_models.PaymentAttachment, error) {
	const op = "PaymentService.AttachProof"
	if file.FileRef == "" {
		return nil, billing.NewFieldError(op, "file_ref", billing.ErrRequired)
	}
	if file.SizeBytes < 0 {
		return nil, billing.NewFieldError(op, "size_bytes", billing.ErrInvalidAmount)
	}
	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == db_models.PaymentPaid && p.cfg.LockAttachmentsWhenPaid {
		return nil, billing.NewError(op, billing.ErrAttachmentFinal)
	}

	attachment := &db_models.PaymentAttachment{
		PaymentID:    paymentID,
		FileRef:      file.FileRef,
		OriginalName: file.OriginalName,
		ContentType:  file.ContentType,
		SizeBytes:    file.SizeBytes,
	}
	if err := p.payments.UpsertAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return attachment, nil
}

func (p *paymentService) InvoiceContext(ctx context.Context, paymentID uuid.UUID) (*InvoiceContext, error) {
	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	currency, err := p.currencies.Resolve(ctx, payment.CurrencyCode)
	if err != nil {
		return nil, err
	}

	ic := &InvoiceContext{
		Payment:    payment,
		Attachment: payment.Attachment,
		Currency:   currency,
		Amounts: map[string]string{
			"payment": currency.Format(payment.Amount),
		},
	}
	if payment.StudentFeeID != nil {
		fee := payment.StudentFee
		if fee == nil {
			if fee, err = p.ledger.GetFee(ctx, *payment.StudentFeeID); err != nil {
				return nil, err
			}
		}
		ic.Fee = fee
		ic.Amounts["amount"] = currency.Format(fee.Amount)
		ic.Amounts["discount"] = currency.Format(fee.Discount)
		ic.Amounts["fine"] = currency.Format(fee.Fine)
		ic.Amounts["amount_due"] = currency.Format(fee.AmountDue())
		ic.Amounts["paid"] = currency.Format(fee.PaidAmount)
		ic.Amounts["outstanding"] = currency.Format(fee.Outstanding())
	}
	return ic, nil
}

func (p *paymentService) ListPayments(ctx context.Context, studentID uuid.UUID) ([]db_models.Payment, error) {
	payments, err := p.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (p *paymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*db_models.Payment, error) {
	payment, err := p.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, billing.NewError("PaymentService.GetPayment", billing.ErrNotFound)
	}
	return payment, nil
}

func (p *paymentService) linkedFee(ctx context.Context, op string, studentID uuid.UUID, in RecordPaymentInput) (*db_models.StudentFee, error) {
	switch {
	case in.StudentFeeID != nil:
		fee, err := p.ledger.GetFee(ctx, *in.StudentFeeID)
		if err != nil {
			return nil, err
		}
		if fee.StudentID != studentID {
			return nil, billing.NewFieldError(op, "student_fee_id", billing.ErrNotFound)
		}
		return fee, nil
	case in.FeeTypeID != nil:
		period, err := billing.ParsePeriod(in.Period)
		if err != nil {
			return nil, err
		}
		return p.ledger.FindCharge(ctx, studentID, *in.FeeTypeID, period)
	}
	return nil, nil
}

func (p *paymentService) currencyFor(ctx context.Context, op, code string) (string, error) {
	if code == "" {
		def, err := p.currencies.DefaultCurrency(ctx)
		if err != nil {
			return "", err
		}
		return def.Code, nil
	}
	info, err := p.currencies.Resolve(ctx, code)
	if err != nil {
		if billing.KindOf(err) == billing.KindConfiguration {
			return "", billing.NewValidationError(op, "currency_code", billing.ErrUnknownCurrency)
		}
		return "", err
	}
	return info.Code, nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := billing.DateOnly(*t)
	return &d
}
