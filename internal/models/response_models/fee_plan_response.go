package response_models

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
)

const dateLayout = "2006-01-02"

type CurrencyResponse struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimal_places"`
}

func FromCurrency(c billing.CurrencyInfo) CurrencyResponse {
	return CurrencyResponse{Code: c.Code, Symbol: c.Symbol, DecimalPlaces: c.DecimalPlaces}
}

func FromCurrencies(cs []billing.CurrencyInfo) []CurrencyResponse {
	return lo.Map(cs, func(c billing.CurrencyInfo, _ int) CurrencyResponse { return FromCurrency(c) })
}

type DiscountResponse struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

func fromDiscount(d *billing.Discount) *DiscountResponse {
	if d == nil {
		return nil
	}
	return &DiscountResponse{Type: string(d.Type), Value: d.Value}
}

type OwnerResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func fromOwner(o billing.Owner) OwnerResponse {
	return OwnerResponse{Kind: string(o.Kind), ID: o.ID.String()}
}

type FeePlanResponse struct {
	ID            string            `json:"id"`
	Owner         OwnerResponse     `json:"owner"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	BaseAmount    decimal.Decimal   `json:"base_amount"`
	CurrencyCode  string            `json:"currency_code"`
	Interval      string            `json:"interval"`
	IntervalCount int               `json:"interval_count,omitempty"`
	Discount      *DiscountResponse `json:"discount,omitempty"`
	EffectiveFrom string            `json:"effective_from"`
	IsActive      bool              `json:"is_active"`
}

func FromFeePlan(p db_models.FeePlan) FeePlanResponse {
	terms := p.Terms()
	return FeePlanResponse{
		ID:            p.ID.String(),
		Owner:         fromOwner(terms.Owner),
		Name:          p.Name,
		Description:   p.Description,
		BaseAmount:    p.BaseAmount,
		CurrencyCode:  p.CurrencyCode,
		Interval:      p.Interval,
		IntervalCount: p.IntervalCount,
		Discount:      fromDiscount(terms.Discount),
		EffectiveFrom: p.EffectiveFrom.Format(dateLayout),
		IsActive:      p.IsActive,
	}
}

func FromFeePlans(ps []db_models.FeePlan) []FeePlanResponse {
	return lo.Map(ps, func(p db_models.FeePlan, _ int) FeePlanResponse { return FromFeePlan(p) })
}

type AssignmentResponse struct {
	ID              string            `json:"id"`
	StudentID       string            `json:"student_id"`
	Owner           OwnerResponse     `json:"owner"`
	PlanID          *string           `json:"plan_id,omitempty"`
	FeeTypeID       *string           `json:"fee_type_id,omitempty"`
	CustomAmount    *decimal.Decimal  `json:"custom_amount,omitempty"`
	CurrencyCode    *string           `json:"currency_code,omitempty"`
	Interval        string            `json:"interval"`
	IntervalCount   int               `json:"interval_count,omitempty"`
	Discount        *DiscountResponse `json:"discount,omitempty"`
	EffectiveFrom   string            `json:"effective_from"`
	IsActive        bool              `json:"is_active"`
	NextPeriodStart *string           `json:"next_period_start,omitempty"`
	NextDueDate     *string           `json:"next_due_date,omitempty"`
}

func FromAssignment(a db_models.StudentFeePlan) AssignmentResponse {
	terms := a.Assignment()
	resp := AssignmentResponse{
		ID:            a.ID.String(),
		StudentID:     a.StudentID.String(),
		Owner:         fromOwner(terms.Owner),
		CustomAmount:  a.CustomAmount,
		CurrencyCode:  a.CurrencyCode,
		Interval:      a.Interval,
		IntervalCount: a.IntervalCount,
		Discount:      fromDiscount(terms.Discount),
		EffectiveFrom: a.EffectiveFrom.Format(dateLayout),
		IsActive:      a.IsActive,
	}
	if a.PlanID != nil {
		resp.PlanID = lo.ToPtr(a.PlanID.String())
	}
	if a.FeeTypeID != nil {
		resp.FeeTypeID = lo.ToPtr(a.FeeTypeID.String())
	}
	if h := a.CachedHints(); h != nil {
		resp.NextPeriodStart = lo.ToPtr(h.NextPeriodStart.Format(dateLayout))
		resp.NextDueDate = lo.ToPtr(h.NextDueDate.Format(dateLayout))
	}
	return resp
}

type PolicyResponse struct {
	StudentID       string            `json:"student_id"`
	Amount          decimal.Decimal   `json:"amount"`
	FormattedAmount string            `json:"formatted_amount"`
	Currency        CurrencyResponse  `json:"currency"`
	Interval        string            `json:"interval"`
	IntervalCount   int               `json:"interval_count,omitempty"`
	Discount        *DiscountResponse `json:"discount,omitempty"`
	EffectiveFrom   string            `json:"effective_from"`
	NextPeriodStart string            `json:"next_period_start"`
	NextDueDate     string            `json:"next_due_date"`
}

func FromPolicy(p billing.Policy, currency billing.CurrencyInfo, hints billing.Hints) PolicyResponse {
	return PolicyResponse{
		StudentID:       p.StudentID.String(),
		Amount:          p.Amount,
		FormattedAmount: currency.Format(p.Amount),
		Currency:        FromCurrency(currency),
		Interval:        string(p.Interval),
		IntervalCount:   p.IntervalCount,
		Discount:        fromDiscount(p.Discount),
		EffectiveFrom:   p.EffectiveFrom.Format(dateLayout),
		NextPeriodStart: hints.NextPeriodStart.Format(dateLayout),
		NextDueDate:     hints.NextDueDate.Format(dateLayout),
	}
}

type OwnerSettingsResponse struct {
	Owner               OwnerResponse `json:"owner"`
	DefaultCurrencyCode string        `json:"default_currency_code,omitempty"`
}

func FromOwnerSettings(o billing.Owner, code string) OwnerSettingsResponse {
	return OwnerSettingsResponse{Owner: fromOwner(o), DefaultCurrencyCode: code}
}
