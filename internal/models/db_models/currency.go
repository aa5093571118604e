package db_models

import (
	"github.com/google/uuid"

	"clubfees/internal/billing"
)

type Currency struct {
	BaseModel
	Code          string `gorm:"size:3;uniqueIndex;not null"` // ISO 4217, upper-case
	Symbol        string `gorm:"size:8;not null"`
	DecimalPlaces int32  `gorm:"not null"`
	IsActive      bool   `gorm:"not null;index"`
	IsDefault     bool   `gorm:"not null;index"`
}

func (c Currency) Info() billing.CurrencyInfo {
	return billing.CurrencyInfo{
		Code:          c.Code,
		Symbol:        c.Symbol,
		DecimalPlaces: c.DecimalPlaces,
	}
}

// OwnerSetting holds per-club / per-organization billing defaults.
type OwnerSetting struct {
	BaseModel
	OwnerKind           string    `gorm:"size:20;not null;uniqueIndex:ux_owner_settings_owner,priority:1"`
	OwnerID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_owner_settings_owner,priority:2"`
	DefaultCurrencyCode string    `gorm:"size:3"`
}
