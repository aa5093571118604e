package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubfees/internal/billing"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

type IOwnerRepository interface {
	// GetDefaultCurrency returns "" when the owner has no default configured.
	GetDefaultCurrency(ctx context.Context, owner billing.Owner) (string, error)
	SetDefaultCurrency(ctx context.Context, owner billing.Owner, code string) error
}

type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) IOwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) GetDefaultCurrency(ctx context.Context, owner billing.Owner) (string, error) {
	var setting db_models.OwnerSetting
	err := infra.Conn(ctx, r.db).
		First(&setting, "owner_kind = ? AND owner_id = ?", string(owner.Kind), owner.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.DefaultCurrencyCode, nil
}

func (r *OwnerRepository) SetDefaultCurrency(ctx context.Context, owner billing.Owner, code string) error {
	setting := db_models.OwnerSetting{
		OwnerKind:           string(owner.Kind),
		OwnerID:             owner.ID,
		DefaultCurrencyCode: code,
	}
	return infra.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_kind"}, {Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_currency_code", "updated_at"}),
		}).
		Create(&setting).Error
}
