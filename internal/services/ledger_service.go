package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

// ChargeInput asks the ledger for one period's row.
type ChargeInput struct {
	StudentID    uuid.UUID
	FeeTypeID    uuid.UUID
	CurrencyCode string
	Charge       billing.Charge
}

// Outstanding is what a student still owes, per currency.
type Outstanding struct {
	StudentID uuid.UUID
	Totals    map[string]decimal.Decimal
	Formatted map[string]string
	Fees      []db_models.StudentFee
}

type LedgerServiceInterface interface {
	// CreateOrGetPeriodCharge is idempotent on (student, fee type, period). created is
	// false when the row already existed.
	CreateOrGetPeriodCharge(ctx context.Context, in ChargeInput) (fee *db_models.StudentFee, created bool, err error)
	RecordFine(ctx context.Context, feeID uuid.UUID, amount decimal.Decimal) (*db_models.StudentFee, error)
	ApplyPayment(ctx context.Context, feeID uuid.UUID, amount decimal.Decimal) (billing.Settlement, error)
	GetFee(ctx context.Context, feeID uuid.UUID) (*db_models.StudentFee, error)
	ListStudentFees(ctx context.Context, studentID uuid.UUID, from, to *billing.Period) ([]db_models.StudentFee, error)
	Outstanding(ctx context.Context, studentID uuid.UUID) (*Outstanding, error)
	FindCharge(ctx context.Context, studentID, feeTypeID uuid.UUID, period billing.Period) (*db_models.StudentFee, error)
	// FeeTypeFor returns id, or the recurring fee type when id is nil.
	FeeTypeFor(ctx context.Context, id *uuid.UUID) (uuid.UUID, error)
	LatestBillingPeriod(ctx context.Context, studentID, feeTypeID uuid.UUID) (*billing.Period, error)
}

type LedgerParams struct {
	fx.In

	Fees       repositories.IFeeLedgerRepository
	FeeTypes   repositories.IFeeTypeRepository
	Currencies CurrencyRegistry
	Config     *config.Config
	Log        *zap.Logger
}

type LedgerService struct {
	fees        repositories.IFeeLedgerRepository
	feeTypes    repositories.IFeeTypeRepository
	currencies  CurrencyRegistry
	policy      billing.OverpaymentPolicy
	feeTypeCode string
	log         *zap.Logger

	mu               sync.Mutex
	defaultFeeTypeID uuid.UUID
}

func NewLedgerService(p LedgerParams) LedgerServiceInterface {
	return &LedgerService{
		fees:        p.Fees,
		feeTypes:    p.FeeTypes,
		currencies:  p.Currencies,
		policy:      p.Config.Billing.OverpaymentPolicy,
		feeTypeCode: p.Config.Billing.FeeTypeCode,
		log:         p.Log.Named("ledger.service"),
	}
}

func (l *LedgerService) CreateOrGetPeriodCharge(ctx context.Context, in ChargeInput) (*db_models.StudentFee, bool, error) {
	const op = "LedgerService.CreateOrGetPeriodCharge"
	c := in.Charge
	fee := &db_models.StudentFee{
		StudentID:      in.StudentID,
		FeeTypeID:      in.FeeTypeID,
		Period:         c.Period.String(),
		Amount:         c.Amount,
		Discount:       c.Discount,
		Fine:           decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         string(billing.DeriveStatus(c.Amount, c.Discount, decimal.Zero, decimal.Zero)),
		DueDate:        c.DueDate,
		CurrencyCode:   in.CurrencyCode,
		IsBillingMonth: c.BillingMonth,
	}

	created, err := l.fees.InsertIfAbsent(ctx, fee)
	if err != nil {
		return nil, false, fmt.Errorf("insert charge: %w", err)
	}
	if created {
		return fee, true, nil
	}

	existing, err := l.fees.GetByKey(ctx, in.StudentID, in.FeeTypeID, fee.Period)
	if err != nil {
		return nil, false, fmt.Errorf("read existing charge: %w", err)
	}
	if existing == nil {
		// the winning insert is not visible yet
		return nil, false, billing.NewError(op, billing.ErrConcurrentUpdate)
	}
	if !existing.Amount.Equal(c.Amount) || !existing.Discount.Equal(c.Discount) {
		return existing, false, billing.NewError(op, billing.ErrDuplicatePeriod)
	}
	return existing, false, nil
}

func (l *LedgerService) RecordFine(ctx context.Context, feeID uuid.UUID, amount decimal.Decimal) (*db_models.StudentFee, error) {
	const op = "LedgerService.RecordFine"
	if !amount.IsPositive() {
		return nil, billing.NewFieldError(op, "amount", billing.ErrInvalidAmount)
	}

	var fee *db_models.StudentFee
	err := retryOnConflict(func() error {
		var err error
		fee, err = l.GetFee(ctx, feeID)
		if err != nil {
			return err
		}
		if fee.DerivedStatus() == billing.FeePaid {
			return billing.NewError(op, billing.ErrChargeSettled)
		}
		fine := fee.Fine.Add(amount)
		status := billing.DeriveStatus(fee.Amount, fee.Discount, fine, fee.PaidAmount)
		if err := l.fees.CompareAndSet(ctx, fee, fee.PaidAmount, fine, status); err != nil {
			return err
		}
		fee.Fine = fine
		fee.Status = string(status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("fine recorded",
		zap.String("fee_id", feeID.String()),
		zap.String("amount", amount.String()),
		zap.String("status", fee.Status))
	return fee, nil
}

func (l *LedgerService) ApplyPayment(ctx context.Context, feeID uuid.UUID, amount decimal.Decimal) (billing.Settlement, error) {
	var settlement billing.Settlement
	err := retryOnConflict(func() error {
		fee, err := l.GetFee(ctx, feeID)
		if err != nil {
			return err
		}
		s, err := billing.Settle(fee.Amount, fee.Discount, fee.Fine, fee.PaidAmount, amount, l.policy)
		if err != nil {
			return err
		}
		if err := l.fees.CompareAndSet(ctx, fee, s.Paid, fee.Fine, s.To); err != nil {
			return err
		}
		settlement = s
		return nil
	})
	if err != nil {
		return billing.Settlement{}, err
	}

	if settlement.Excess.IsPositive() {
		l.log.Warn("overpayment capped",
			zap.String("fee_id", feeID.String()),
			zap.String("payment", amount.String()),
			zap.String("applied", settlement.Applied.String()),
			zap.String("excess", settlement.Excess.String()))
	}
	return settlement, nil
}

func (l *LedgerService) GetFee(ctx context.Context, feeID uuid.UUID) (*db_models.StudentFee, error) {
	fee, err := l.fees.GetByID(ctx, feeID)
	if err != nil {
		return nil, fmt.Errorf("get fee: %w", err)
	}
	if fee == nil {
		return nil, billing.NewError("LedgerService.GetFee", billing.ErrNotFound)
	}
	return fee, nil
}

func (l *LedgerService) FindCharge(ctx context.Context, studentID, feeTypeID uuid.UUID, period billing.Period) (*db_models.StudentFee, error) {
	fee, err := l.fees.GetByKey(ctx, studentID, feeTypeID, period.String())
	if err != nil {
		return nil, fmt.Errorf("find charge: %w", err)
	}
	if fee == nil {
		return nil, billing.NewError("LedgerService.FindCharge", billing.ErrNotFound)
	}
	return fee, nil
}

func (l *LedgerService) ListStudentFees(ctx context.Context, studentID uuid.UUID, from, to *billing.Period) ([]db_models.StudentFee, error) {
	var lower, upper string
	if from != nil {
		lower = from.String()
	}
	if to != nil {
		upper = to.String()
	}
	fees, err := l.fees.ListByStudent(ctx, studentID, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

func (l *LedgerService) Outstanding(ctx context.Context, studentID uuid.UUID) (*Outstanding, error) {
	fees, err := l.ListStudentFees(ctx, studentID, nil, nil)
	if err != nil {
		return nil, err
	}
	open := lo.Filter(fees, func(f db_models.StudentFee, _ int) bool {
		return f.DerivedStatus() != billing.FeePaid
	})

	out := &Outstanding{
		StudentID: studentID,
		Totals:    map[string]decimal.Decimal{},
		Formatted: map[string]string{},
		Fees:      open,
	}
	for code, rows := range lo.GroupBy(open, func(f db_models.StudentFee) string { return f.CurrencyCode }) {
		total := lo.Reduce(rows, func(acc decimal.Decimal, f db_models.StudentFee, _ int) decimal.Decimal {
			return acc.Add(f.Outstanding())
		}, decimal.Zero)
		out.Totals[code] = total
		if s, err := l.currencies.Format(ctx, code, total); err == nil {
			out.Formatted[code] = s
		}
	}
	return out, nil
}

func (l *LedgerService) FeeTypeFor(ctx context.Context, id *uuid.UUID) (uuid.UUID, error) {
	if id != nil {
		return *id, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.defaultFeeTypeID != uuid.Nil {
		return l.defaultFeeTypeID, nil
	}
	feeType, err := l.feeTypes.EnsureByCode(ctx, l.feeTypeCode, "Monthly Tuition", true)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure fee type %s: %w", l.feeTypeCode, err)
	}
	if feeType == nil {
		return uuid.Nil, fmt.Errorf("fee type %s missing after insert", l.feeTypeCode)
	}
	l.defaultFeeTypeID = feeType.ID
	return feeType.ID, nil
}

func (l *LedgerService) LatestBillingPeriod(ctx context.Context, studentID, feeTypeID uuid.UUID) (*billing.Period, error) {
	s, err := l.fees.LatestBillingPeriod(ctx, studentID, feeTypeID)
	if err != nil {
		return nil, fmt.Errorf("latest billing period: %w", err)
	}
	if s == "" {
		return nil, nil
	}
	p, err := billing.ParsePeriod(s)
	if err != nil {
		return nil, fmt.Errorf("stored period %q: %w", s, err)
	}
	return &p, nil
}

// retryOnConflict runs fn, and once more if it lost a race.
func retryOnConflict(fn func() error) error {
	err := fn()
	if billing.IsConflict(err) {
		err = fn()
	}
	return err
}
