package request_models

import "github.com/shopspring/decimal"

type RecordPaymentRequest struct {
	StudentFeeID  *string         `json:"student_fee_id" binding:"omitempty,uuid"`
	FeeTypeID     *string         `json:"fee_type_id" binding:"omitempty,uuid"`
	Period        string          `json:"period" binding:"omitempty,period"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card online other"`
	Status        string          `json:"status" binding:"omitempty,oneof=paid unpaid"`
	TransactionID *string         `json:"transaction_id" binding:"omitempty,max=100"`
	PayDate       *string         `json:"pay_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate       *string         `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	CurrencyCode  string          `json:"currency_code" binding:"omitempty,currency"`
	BankTransfer  map[string]any  `json:"bank_transfer"`
	Note          *string         `json:"note"`
}

type MarkPaidRequest struct {
	PayDate       *string `json:"pay_date" binding:"omitempty,datetime=2006-01-02"`
	TransactionID *string `json:"transaction_id" binding:"omitempty,max=100"`
}

type AmendAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CompensateRequest struct {
	Note *string `json:"note"`
}

type AttachmentRequest struct {
	FileRef      string `json:"file_ref" binding:"required"`
	OriginalName string `json:"original_name" binding:"max=255"`
	ContentType  string `json:"content_type" binding:"max=100"`
	SizeBytes    int64  `json:"size_bytes" binding:"gte=0"`
}
