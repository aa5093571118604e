package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
)

// StudentFeePlan is a student's billing assignment. NextPeriodStart and NextDueDate
// are a cache; the scheduler can always recompute them.
type StudentFeePlan struct {
	BaseModel
	StudentID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	OwnerKind     string           `gorm:"size:20;not null;index:ix_student_fee_plans_owner,priority:1"`
	OwnerID       uuid.UUID        `gorm:"type:uuid;not null;index:ix_student_fee_plans_owner,priority:2"`
	PlanID        *uuid.UUID       `gorm:"type:uuid;index"`
	FeeTypeID     *uuid.UUID       `gorm:"type:uuid"`
	CustomAmount  *decimal.Decimal `gorm:"type:numeric(14,4)"`
	CurrencyCode  *string          `gorm:"size:3"`
	Interval      string           `gorm:"size:20;not null;default:'monthly'"`
	IntervalCount int              `gorm:"not null;default:0"`
	DiscountType  *string          `gorm:"size:10"`
	DiscountValue *decimal.Decimal `gorm:"type:numeric(14,4)"`
	EffectiveFrom time.Time        `gorm:"type:date;not null"`
	IsActive      bool             `gorm:"not null;index"`

	NextPeriodStart *time.Time `gorm:"type:date"`
	NextDueDate     *time.Time `gorm:"type:date"`

	Plan *FeePlan `gorm:"foreignKey:PlanID;constraint:OnDelete:SET NULL"`
}

func (StudentFeePlan) TableName() string { return "student_fee_plans" }

func (s StudentFeePlan) Owner() billing.Owner {
	return billing.Owner{Kind: billing.OwnerKind(s.OwnerKind), ID: s.OwnerID}
}

func (s StudentFeePlan) Assignment() billing.Assignment {
	a := billing.Assignment{
		StudentID:     s.StudentID,
		Owner:         s.Owner(),
		PlanID:        s.PlanID,
		CustomAmount:  s.CustomAmount,
		Interval:      billing.Interval(s.Interval),
		IntervalCount: s.IntervalCount,
		Discount:      discountOf(s.DiscountType, s.DiscountValue),
		EffectiveFrom: s.EffectiveFrom,
	}
	if s.CurrencyCode != nil {
		a.CurrencyCode = *s.CurrencyCode
	}
	return a
}

// CachedHints returns the stored scheduling cache, nil when never written.
func (s StudentFeePlan) CachedHints() *billing.Hints {
	if s.NextPeriodStart == nil || s.NextDueDate == nil {
		return nil
	}
	return &billing.Hints{
		NextPeriodStart: billing.DateOnly(*s.NextPeriodStart),
		NextDueDate:     billing.DateOnly(*s.NextDueDate),
	}
}

type FeeType struct {
	BaseModel
	Code        string `gorm:"size:60;uniqueIndex;not null"`
	Name        string `gorm:"size:120;not null"`
	IsRecurring bool   `gorm:"not null"`
}
