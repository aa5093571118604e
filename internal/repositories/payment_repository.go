package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubfees/internal/billing"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

type IPaymentRepository interface {
	Create(ctx context.Context, payment *db_models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]db_models.Payment, error)
	// MarkPaid flips an unpaid payment to paid; ErrPaymentFinal if it was already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, payDate time.Time, transactionID *string) error
	// UpdateAmount edits an unpaid payment; ErrPaymentFinal if it was already paid.
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	UpsertAttachment(ctx context.Context, attachment *db_models.PaymentAttachment) error
	FindCompensation(ctx context.Context, paymentID uuid.UUID) (*db_models.Payment, error)
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) IPaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *db_models.Payment) error {
	return infra.Conn(ctx, r.db).Omit("StudentFee", "Attachment").Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := infra.Conn(ctx, r.db).
		Preload("Attachment").
		Preload("StudentFee").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := infra.Conn(ctx, r.db).
		Preload("Attachment").
		Where("student_id = ?", studentID).
		Order("period DESC, created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, payDate time.Time, transactionID *string) error {
	updates := map[string]any{
		"status":   string(db_models.PaymentPaid),
		"pay_date": payDate,
	}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}
	return r.updateUnpaid(ctx, "PaymentRepository.MarkPaid", id, updates)
}

func (r *PaymentRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.updateUnpaid(ctx, "PaymentRepository.UpdateAmount", id, map[string]any{"amount": amount})
}

func (r *PaymentRepository) updateUnpaid(ctx context.Context, op string, id uuid.UUID, updates map[string]any) error {
	res := infra.Conn(ctx, r.db).
		Model(&db_models.Payment{}).
		Where("id = ? AND status = ?", id, string(db_models.PaymentUnpaid)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.NewError(op, billing.ErrPaymentFinal)
	}
	return nil
}

// UpsertAttachment replaces the payment's attachment in place. attachment is refreshed
// from the stored row, so a replace keeps the original id and created_at.
func (r *PaymentRepository) UpsertAttachment(ctx context.Context, attachment *db_models.PaymentAttachment) error {
	return infra.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "payment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"file_ref", "original_name", "content_type", "size_bytes", "updated_at",
			}),
		}, clause.Returning{}).
		Create(attachment).Error
}

func (r *PaymentRepository) FindCompensation(ctx context.Context, paymentID uuid.UUID) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := infra.Conn(ctx, r.db).First(&payment, "compensates_payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}
