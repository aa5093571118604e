package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
)

// FeePlan is a catalog template owned by a club or an organization.
type FeePlan struct {
	BaseModel
	OwnerKind     string           `gorm:"size:20;not null;uniqueIndex:ux_fee_plans_owner_name,priority:1"`
	OwnerID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:ux_fee_plans_owner_name,priority:2"`
	Name          string           `gorm:"size:120;not null;uniqueIndex:ux_fee_plans_owner_name,priority:3"`
	Description   *string          `gorm:"type:text"`
	BaseAmount    decimal.Decimal  `gorm:"type:numeric(14,4);not null"`
	CurrencyCode  string           `gorm:"size:3;not null"`
	Interval      string           `gorm:"size:20;not null"` // monthly | quarterly | semester | yearly | custom
	IntervalCount int              `gorm:"not null;default:0"`
	DiscountType  *string          `gorm:"size:10"` // percent | fixed
	DiscountValue *decimal.Decimal `gorm:"type:numeric(14,4)"`
	EffectiveFrom time.Time        `gorm:"type:date;not null"`
	IsActive      bool             `gorm:"not null;index"`
}

func (FeePlan) TableName() string { return "fee_plans" }

func (p FeePlan) Owner() billing.Owner {
	return billing.Owner{Kind: billing.OwnerKind(p.OwnerKind), ID: p.OwnerID}
}

func (p FeePlan) Terms() billing.PlanTerms {
	return billing.PlanTerms{
		ID:            p.ID,
		Owner:         p.Owner(),
		BaseAmount:    p.BaseAmount,
		CurrencyCode:  p.CurrencyCode,
		Interval:      billing.Interval(p.Interval),
		IntervalCount: p.IntervalCount,
		Discount:      discountOf(p.DiscountType, p.DiscountValue),
		EffectiveFrom: p.EffectiveFrom,
	}
}

func discountOf(typ *string, value *decimal.Decimal) *billing.Discount {
	if typ == nil || *typ == "" {
		return nil
	}
	d := &billing.Discount{Type: billing.DiscountType(*typ)}
	if value != nil {
		d.Value = *value
	}
	return d
}
