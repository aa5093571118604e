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

type ICurrencyRepository interface {
	GetByCode(ctx context.Context, code string) (*db_models.Currency, error)
	ListActive(ctx context.Context) ([]db_models.Currency, error)
	FindDefaults(ctx context.Context) ([]db_models.Currency, error)
	Seed(ctx context.Context, currencies []db_models.Currency) (int64, error)
}

type CurrencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) ICurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*db_models.Currency, error) {
	var currency db_models.Currency
	err := infra.Conn(ctx, r.db).
		First(&currency, "code = ?", billing.NormalizeCurrencyCode(code)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &currency, nil
}

func (r *CurrencyRepository) ListActive(ctx context.Context) ([]db_models.Currency, error) {
	var currencies []db_models.Currency
	err := infra.Conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&currencies).Error
	if err != nil {
		return nil, err
	}
	return currencies, nil
}

func (r *CurrencyRepository) FindDefaults(ctx context.Context) ([]db_models.Currency, error) {
	var currencies []db_models.Currency
	err := infra.Conn(ctx, r.db).
		Where("is_active = ? AND is_default = ?", true, true).
		Find(&currencies).Error
	if err != nil {
		return nil, err
	}
	return currencies, nil
}

// Seed inserts currencies that are not present yet and reports how many were added.
func (r *CurrencyRepository) Seed(ctx context.Context, currencies []db_models.Currency) (int64, error) {
	if len(currencies) == 0 {
		return 0, nil
	}
	res := infra.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&currencies)
	return res.RowsAffected, res.Error
}
