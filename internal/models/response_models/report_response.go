package response_models

import (
	"github.com/shopspring/decimal"

	"clubfees/internal/models/db_models"
)

type PeriodSummaryResponse struct {
	Period       string          `json:"period"`
	CurrencyCode string          `json:"currency_code"`
	Billed       decimal.Decimal `json:"billed"`
	Collected    decimal.Decimal `json:"collected"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Charges      int64           `json:"charges"`
	Settled      int64           `json:"settled"`
	Payments     int64           `json:"payments"`
}

type ReportRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type CollectionsReportResponse struct {
	Range          ReportRange                  `json:"range"`
	Periods        []PeriodSummaryResponse      `json:"periods"`
	Billed         map[string]decimal.Decimal   `json:"billed"`
	Collected      map[string]decimal.Decimal   `json:"collected"`
	Outstanding    map[string]decimal.Decimal   `json:"outstanding"`
	Formatted      map[string]map[string]string `json:"formatted"`
	RecentPayments []PaymentResponse            `json:"recent_payments"`
}

func FromCollections(from, to string, periods []PeriodSummaryResponse, billed, collected, outstanding map[string]decimal.Decimal,
	formatted map[string]map[string]string, recent []db_models.Payment) CollectionsReportResponse {
	return CollectionsReportResponse{
		Range:          ReportRange{From: from, To: to},
		Periods:        periods,
		Billed:         billed,
		Collected:      collected,
		Outstanding:    outstanding,
		Formatted:      formatted,
		RecentPayments: FromPayments(recent),
	}
}
