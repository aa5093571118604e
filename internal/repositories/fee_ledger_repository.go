package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubfees/internal/billing"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

// IFeeLedgerRepository is the store behind student_fees.
type IFeeLedgerRepository interface {
	// InsertIfAbsent reports whether fee was inserted; false means a row for the same
	// (student, fee type, period) already existed and fee was left untouched.
	InsertIfAbsent(ctx context.Context, fee *db_models.StudentFee) (bool, error)
	GetByKey(ctx context.Context, studentID, feeTypeID uuid.UUID, period string) (*db_models.StudentFee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.StudentFee, error)
	// ListByStudent returns rows ordered by period; empty bounds are open.
	ListByStudent(ctx context.Context, studentID uuid.UUID, from, to string) ([]db_models.StudentFee, error)
	// LatestBillingPeriod returns the newest billing-month period, "" when none.
	LatestBillingPeriod(ctx context.Context, studentID, feeTypeID uuid.UUID) (string, error)
	// CompareAndSet writes paid, fine and status only if the stored paid_amount and fine
	// still equal expected's; otherwise ErrConcurrentUpdate.
	CompareAndSet(ctx context.Context, expected *db_models.StudentFee, paid, fine decimal.Decimal, status billing.FeeStatus) error
}

type FeeLedgerRepository struct {
	db *gorm.DB
}

func NewFeeLedgerRepository(db *gorm.DB) IFeeLedgerRepository {
	return &FeeLedgerRepository{db: db}
}

func (r *FeeLedgerRepository) InsertIfAbsent(ctx context.Context, fee *db_models.StudentFee) (bool, error) {
	res := infra.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "fee_type_id"}, {Name: "period"},
			},
			DoNothing: true,
		}).
		Omit("FeeType").
		Create(fee)
	if res.Error != nil {
		if infra.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *FeeLedgerRepository) GetByKey(ctx context.Context, studentID, feeTypeID uuid.UUID, period string) (*db_models.StudentFee, error) {
	var fee db_models.StudentFee
	err := infra.Conn(ctx, r.db).
		First(&fee, "student_id = ? AND fee_type_id = ? AND period = ?", studentID, feeTypeID, period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fee, nil
}

func (r *FeeLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.StudentFee, error) {
	var fee db_models.StudentFee
	err := infra.Conn(ctx, r.db).Preload("FeeType").First(&fee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fee, nil
}

func (r *FeeLedgerRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, from, to string) ([]db_models.StudentFee, error) {
	var fees []db_models.StudentFee
	q := infra.Conn(ctx, r.db).Preload("FeeType").Where("student_id = ?", studentID)
	if from != "" {
		q = q.Where("period >= ?", from)
	}
	if to != "" {
		q = q.Where("period <= ?", to)
	}
	if err := q.Order("period ASC").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *FeeLedgerRepository) LatestBillingPeriod(ctx context.Context, studentID, feeTypeID uuid.UUID) (string, error) {
	var periods []string
	err := infra.Conn(ctx, r.db).
		Model(&db_models.StudentFee{}).
		Where("student_id = ? AND fee_type_id = ? AND is_billing_month = ?", studentID, feeTypeID, true).
		Order("period DESC").
		Limit(1).
		Pluck("period", &periods).Error
	if err != nil || len(periods) == 0 {
		return "", err
	}
	return periods[0], nil
}

func (r *FeeLedgerRepository) CompareAndSet(ctx context.Context, expected *db_models.StudentFee, paid, fine decimal.Decimal, status billing.FeeStatus) error {
	res := infra.Conn(ctx, r.db).
		Model(&db_models.StudentFee{}).
		Where("id = ? AND paid_amount = ? AND fine = ?", expected.ID, expected.PaidAmount, expected.Fine).
		Updates(map[string]any{"paid_amount": paid, "fine": fine, "status": string(status)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.NewError("FeeLedgerRepository.CompareAndSet", billing.ErrConcurrentUpdate)
	}
	return nil
}
