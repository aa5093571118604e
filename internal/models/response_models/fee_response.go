package response_models

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
)

type FeeResponse struct {
	ID             string          `json:"id"`
	StudentID      string          `json:"student_id"`
	FeeTypeID      string          `json:"fee_type_id"`
	FeeTypeCode    string          `json:"fee_type_code,omitempty"`
	Period         string          `json:"period"`
	Amount         decimal.Decimal `json:"amount"`
	Discount       decimal.Decimal `json:"discount"`
	Fine           decimal.Decimal `json:"fine"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Status         string          `json:"status"`
	DueDate        string          `json:"due_date"`
	CurrencyCode   string          `json:"currency_code"`
	IsBillingMonth bool            `json:"is_billing_month"`
}

func FromFee(f db_models.StudentFee) FeeResponse {
	resp := FeeResponse{
		ID:             f.ID.String(),
		StudentID:      f.StudentID.String(),
		FeeTypeID:      f.FeeTypeID.String(),
		Period:         f.Period,
		Amount:         f.Amount,
		Discount:       f.Discount,
		Fine:           f.Fine,
		AmountDue:      f.AmountDue(),
		PaidAmount:     f.PaidAmount,
		Outstanding:    f.Outstanding(),
		Status:         f.Status,
		DueDate:        f.DueDate.Format(dateLayout),
		CurrencyCode:   f.CurrencyCode,
		IsBillingMonth: f.IsBillingMonth,
	}
	if f.FeeType != nil {
		resp.FeeTypeCode = f.FeeType.Code
	}
	return resp
}

func FromFees(fs []db_models.StudentFee) []FeeResponse {
	return lo.Map(fs, func(f db_models.StudentFee, _ int) FeeResponse { return FromFee(f) })
}

type OutstandingResponse struct {
	StudentID string                     `json:"student_id"`
	Totals    map[string]decimal.Decimal `json:"totals"`
	Formatted map[string]string          `json:"formatted"`
	Fees      []FeeResponse              `json:"fees"`
}

type SettlementResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Paid    decimal.Decimal `json:"paid_amount"`
	Applied decimal.Decimal `json:"applied"`
	Excess  decimal.Decimal `json:"excess"`
}

func FromSettlement(s *billing.Settlement) *SettlementResponse {
	if s == nil {
		return nil
	}
	return &SettlementResponse{
		From:    string(s.From),
		To:      string(s.To),
		Paid:    s.Paid,
		Applied: s.Applied,
		Excess:  s.Excess,
	}
}

type GenerateResponse struct {
	StudentID string       `json:"student_id"`
	Period    string       `json:"period"`
	Outcome   string       `json:"outcome"`
	Fee       *FeeResponse `json:"fee,omitempty"`
}

func FromGenerated(studentID, period, outcome string, fee *db_models.StudentFee) GenerateResponse {
	resp := GenerateResponse{StudentID: studentID, Period: period, Outcome: outcome}
	if fee != nil {
		resp.Fee = lo.ToPtr(FromFee(*fee))
	}
	return resp
}
