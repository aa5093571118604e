package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

type IFeeTypeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeeType, error)
	GetByCode(ctx context.Context, code string) (*db_models.FeeType, error)
	// EnsureByCode returns the fee type with code, inserting it first if missing.
	EnsureByCode(ctx context.Context, code, name string, recurring bool) (*db_models.FeeType, error)
}

type FeeTypeRepository struct {
	db *gorm.DB
}

func NewFeeTypeRepository(db *gorm.DB) IFeeTypeRepository {
	return &FeeTypeRepository{db: db}
}

func (r *FeeTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeeType, error) {
	var feeType db_models.FeeType
	err := infra.Conn(ctx, r.db).First(&feeType, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feeType, nil
}

func (r *FeeTypeRepository) GetByCode(ctx context.Context, code string) (*db_models.FeeType, error) {
	var feeType db_models.FeeType
	err := infra.Conn(ctx, r.db).First(&feeType, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feeType, nil
}

func (r *FeeTypeRepository) EnsureByCode(ctx context.Context, code, name string, recurring bool) (*db_models.FeeType, error) {
	feeType := db_models.FeeType{Code: code, Name: name, IsRecurring: recurring}
	err := infra.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&feeType).Error
	if err != nil {
		return nil, err
	}
	return r.GetByCode(ctx, code)
}
