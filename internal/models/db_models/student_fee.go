package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
)

// StudentFee is one period's charge for a student. Unique per
// (student_id, fee_type_id, period); Status is always derived.
type StudentFee struct {
	BaseModel
	StudentID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_student_fees_period,priority:1"`
	FeeTypeID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_student_fees_period,priority:2"`
	Period         string          `gorm:"size:7;not null;uniqueIndex:ux_student_fees_period,priority:3"` // YYYY-MM
	Amount         decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Discount       decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Fine           decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Status         string          `gorm:"size:10;not null;index"`
	DueDate        time.Time       `gorm:"type:date;not null"`
	CurrencyCode   string          `gorm:"size:3;not null"`
	IsBillingMonth bool            `gorm:"not null"`

	FeeType *FeeType `gorm:"foreignKey:FeeTypeID"`
}

func (StudentFee) TableName() string { return "student_fees" }

func (f StudentFee) AmountDue() decimal.Decimal {
	return billing.AmountDue(f.Amount, f.Discount, f.Fine)
}

// Outstanding is what is still owed, never negative.
func (f StudentFee) Outstanding() decimal.Decimal {
	out := f.AmountDue().Sub(f.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func (f StudentFee) DerivedStatus() billing.FeeStatus {
	return billing.DeriveStatus(f.Amount, f.Discount, f.Fine, f.PaidAmount)
}
