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

type IPlanRepository interface {
	Create(ctx context.Context, plan *db_models.FeePlan) error
	Update(ctx context.Context, plan *db_models.FeePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeePlan, error)
	ListByOwner(ctx context.Context, owner billing.Owner, activeOnly bool) ([]db_models.FeePlan, error)
	// Delete detaches the plan from every assignment and soft-deletes it, atomically.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p *PlanRepository) Create(ctx context.Context, plan *db_models.FeePlan) error {
	err := infra.Conn(ctx, p.db).Create(plan).Error
	if infra.IsUniqueViolation(err) {
		return billing.NewFieldError("PlanRepository.Create", "name", billing.ErrDuplicateName)
	}
	return err
}

func (p *PlanRepository) Update(ctx context.Context, plan *db_models.FeePlan) error {
	err := infra.Conn(ctx, p.db).Save(plan).Error
	if infra.IsUniqueViolation(err) {
		return billing.NewFieldError("PlanRepository.Update", "name", billing.ErrDuplicateName)
	}
	return err
}

func (p *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeePlan, error) {
	var plan db_models.FeePlan
	err := infra.Conn(ctx, p.db).First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (p *PlanRepository) ListByOwner(ctx context.Context, owner billing.Owner, activeOnly bool) ([]db_models.FeePlan, error) {
	var plans []db_models.FeePlan
	q := infra.Conn(ctx, p.db).
		Where("owner_kind = ? AND owner_id = ?", string(owner.Kind), owner.ID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("name ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (p *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return infra.Conn(ctx, p.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db_models.StudentFeePlan{}).
			Where("plan_id = ?", id).
			Update("plan_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&db_models.FeePlan{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return billing.NewError("PlanRepository.Delete", billing.ErrNotFound)
		}
		return nil
	})
}
