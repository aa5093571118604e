package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clubfees/internal/billing"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

// IFeePlanRepository stores per-student assignments.
type IFeePlanRepository interface {
	GetByStudent(ctx context.Context, studentID uuid.UUID) (*db_models.StudentFeePlan, error)
	// Save creates or updates the assignment; the student_id unique index keeps it 1:1.
	Save(ctx context.Context, assignment *db_models.StudentFeePlan) error
	// ListActive pages active assignments by student_id, starting after the given id.
	ListActive(ctx context.Context, after uuid.UUID, limit int) ([]db_models.StudentFeePlan, error)
	UpdateHints(ctx context.Context, studentID uuid.UUID, hints billing.Hints) error
}

type FeePlanRepository struct {
	db *gorm.DB
}

func NewFeePlanRepository(db *gorm.DB) IFeePlanRepository {
	return &FeePlanRepository{db: db}
}

func (r *FeePlanRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) (*db_models.StudentFeePlan, error) {
	var assignment db_models.StudentFeePlan
	err := infra.Conn(ctx, r.db).
		Preload("Plan").
		First(&assignment, "student_id = ?", studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *FeePlanRepository) Save(ctx context.Context, assignment *db_models.StudentFeePlan) error {
	err := infra.Conn(ctx, r.db).Omit("Plan").Save(assignment).Error
	if infra.IsUniqueViolation(err) {
		return billing.NewError("FeePlanRepository.Save", billing.ErrConcurrentUpdate)
	}
	return err
}

func (r *FeePlanRepository) ListActive(ctx context.Context, after uuid.UUID, limit int) ([]db_models.StudentFeePlan, error) {
	var assignments []db_models.StudentFeePlan
	err := infra.Conn(ctx, r.db).
		Preload("Plan").
		Where("is_active = ? AND student_id > ?", true, after).
		Order("student_id ASC").
		Limit(limit).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *FeePlanRepository) UpdateHints(ctx context.Context, studentID uuid.UUID, hints billing.Hints) error {
	return infra.Conn(ctx, r.db).
		Model(&db_models.StudentFeePlan{}).
		Where("student_id = ?", studentID).
		Updates(map[string]any{
			"next_period_start": hints.NextPeriodStart,
			"next_due_date":     hints.NextDueDate,
		}).Error
}
