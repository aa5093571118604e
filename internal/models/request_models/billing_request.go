package request_models

import "github.com/shopspring/decimal"

type DiscountRequest struct {
	Type  string          `json:"type" binding:"required,oneof=percent fixed"`
	Value decimal.Decimal `json:"value"`
}

type CreatePlanRequest struct {
	OwnerKind     string           `json:"owner_kind" binding:"required,oneof=club organization org"`
	OwnerID       string           `json:"owner_id" binding:"required,uuid"`
	Name          string           `json:"name" binding:"required,max=120"`
	Description   *string          `json:"description"`
	BaseAmount    decimal.Decimal  `json:"base_amount"`
	CurrencyCode  string           `json:"currency_code" binding:"required,currency"`
	Interval      string           `json:"interval" binding:"omitempty,oneof=monthly quarterly semester yearly custom"`
	IntervalCount int              `json:"interval_count" binding:"gte=0"`
	Discount      *DiscountRequest `json:"discount"`
	EffectiveFrom string           `json:"effective_from" binding:"required,datetime=2006-01-02"`
	IsActive      *bool            `json:"is_active"`
}

type UpdatePlanRequest struct {
	Name          string           `json:"name" binding:"required,max=120"`
	Description   *string          `json:"description"`
	BaseAmount    decimal.Decimal  `json:"base_amount"`
	CurrencyCode  string           `json:"currency_code" binding:"required,currency"`
	Interval      string           `json:"interval" binding:"omitempty,oneof=monthly quarterly semester yearly custom"`
	IntervalCount int              `json:"interval_count" binding:"gte=0"`
	Discount      *DiscountRequest `json:"discount"`
	EffectiveFrom string           `json:"effective_from" binding:"required,datetime=2006-01-02"`
	IsActive      *bool            `json:"is_active"`
}

type AssignmentRequest struct {
	OwnerKind     string           `json:"owner_kind" binding:"required,oneof=club organization org"`
	OwnerID       string           `json:"owner_id" binding:"required,uuid"`
	PlanID        *string          `json:"plan_id" binding:"omitempty,uuid"`
	FeeTypeID     *string          `json:"fee_type_id" binding:"omitempty,uuid"`
	CustomAmount  *decimal.Decimal `json:"custom_amount"`
	CurrencyCode  string           `json:"currency_code" binding:"omitempty,currency"`
	Interval      string           `json:"interval" binding:"omitempty,oneof=monthly quarterly semester yearly custom"`
	IntervalCount int              `json:"interval_count" binding:"gte=0"`
	Discount      *DiscountRequest `json:"discount"`
	EffectiveFrom string           `json:"effective_from" binding:"omitempty,datetime=2006-01-02"`
	IsActive      *bool            `json:"is_active"`
}

type OwnerSettingsRequest struct {
	DefaultCurrencyCode string `json:"default_currency_code" binding:"required,currency"`
}

type PeriodRequest struct {
	Period string `json:"period" binding:"required,period"`
}

type BackfillRequest struct {
	From string `json:"from" binding:"required,period"`
	To   string `json:"to" binding:"required,period"`
}

type FineRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
