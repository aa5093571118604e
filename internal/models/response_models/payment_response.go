package response_models

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"clubfees/internal/models/db_models"
)

type AttachmentResponse struct {
	FileRef      string `json:"file_ref"`
	OriginalName string `json:"original_name,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
}

func FromAttachment(a *db_models.PaymentAttachment) *AttachmentResponse {
	if a == nil {
		return nil
	}
	return &AttachmentResponse{
		FileRef:      a.FileRef,
		OriginalName: a.OriginalName,
		ContentType:  a.ContentType,
		SizeBytes:    a.SizeBytes,
	}
}

type PaymentResponse struct {
	ID                   string              `json:"id"`
	StudentID            string              `json:"student_id"`
	StudentFeeID         *string             `json:"student_fee_id,omitempty"`
	Period               string              `json:"period"`
	Amount               decimal.Decimal     `json:"amount"`
	Method               string              `json:"method"`
	Status               string              `json:"status"`
	TransactionID        *string             `json:"transaction_id,omitempty"`
	PayDate              *string             `json:"pay_date,omitempty"`
	DueDate              *string             `json:"due_date,omitempty"`
	CurrencyCode         string              `json:"currency_code"`
	BankTransfer         map[string]any      `json:"bank_transfer,omitempty"`
	Note                 *string             `json:"note,omitempty"`
	CompensatesPaymentID *string             `json:"compensates_payment_id,omitempty"`
	Attachment           *AttachmentResponse `json:"attachment,omitempty"`
	Standalone           bool                `json:"standalone"`
}

func FromPayment(p db_models.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		StudentID:     p.StudentID.String(),
		Period:        p.Period,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CurrencyCode:  p.CurrencyCode,
		BankTransfer:  p.BankTransfer,
		Note:          p.Note,
		Attachment:    FromAttachment(p.Attachment),
		Standalone:    p.IsStandalone(),
	}
	if p.StudentFeeID != nil {
		resp.StudentFeeID = lo.ToPtr(p.StudentFeeID.String())
	}
	if p.PayDate != nil {
		resp.PayDate = lo.ToPtr(p.PayDate.Format(dateLayout))
	}
	if p.DueDate != nil {
		resp.DueDate = lo.ToPtr(p.DueDate.Format(dateLayout))
	}
	if p.CompensatesPaymentID != nil {
		resp.CompensatesPaymentID = lo.ToPtr(p.CompensatesPaymentID.String())
	}
	return resp
}

func FromPayments(ps []db_models.Payment) []PaymentResponse {
	return lo.Map(ps, func(p db_models.Payment, _ int) PaymentResponse { return FromPayment(p) })
}

type RecordedPaymentResponse struct {
	Payment    PaymentResponse     `json:"payment"`
	Settlement *SettlementResponse `json:"settlement,omitempty"`
}

type InvoiceContextResponse struct {
	Payment    PaymentResponse     `json:"payment"`
	Fee        *FeeResponse        `json:"fee,omitempty"`
	Attachment *AttachmentResponse `json:"attachment,omitempty"`
	Currency   CurrencyResponse    `json:"currency"`
	Amounts    map[string]string   `json:"amounts"`
}
