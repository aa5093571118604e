package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodOnline       PaymentMethod = "online"
	MethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodOnline, MethodOther:
		return true
	}
	return false
}

// Payment is a recorded money movement. StudentFeeID is nil for standalone payments.
// Amount is immutable once Status is paid; corrections are new rows pointing back via
// CompensatesPaymentID.
type Payment struct {
	BaseModel
	StudentID            uuid.UUID         `gorm:"type:uuid;not null;index"`
	StudentFeeID         *uuid.UUID        `gorm:"type:uuid;index"`
	Period               string            `gorm:"size:7;not null;index"`
	Amount               decimal.Decimal   `gorm:"type:numeric(14,4);not null"`
	Method               PaymentMethod     `gorm:"size:20;not null"`
	Status               PaymentStatus     `gorm:"size:10;not null;index"`
	TransactionID        *string           `gorm:"size:100;index"`
	PayDate              *time.Time        `gorm:"type:date"`
	DueDate              *time.Time        `gorm:"type:date"`
	CurrencyCode         string            `gorm:"size:3;not null"`
	BankTransfer         datatypes.JSONMap `gorm:"type:jsonb"`
	Note                 *string           `gorm:"type:text"`
	CompensatesPaymentID *uuid.UUID        `gorm:"type:uuid;uniqueIndex"`

	StudentFee *StudentFee        `gorm:"foreignKey:StudentFeeID"`
	Attachment *PaymentAttachment `gorm:"foreignKey:PaymentID"`
}

func (p Payment) IsStandalone() bool {
	return p.StudentFeeID == nil
}

// PaymentAttachment is proof-of-payment metadata; the file itself lives elsewhere.
type PaymentAttachment struct {
	BaseModel
	PaymentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FileRef      string    `gorm:"type:text;not null"`
	OriginalName string    `gorm:"size:255"`
	ContentType  string    `gorm:"size:100"`
	SizeBytes    int64     `gorm:"not null;default:0"`
}
