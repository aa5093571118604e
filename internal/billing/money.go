package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyInfo is the registry's view of a currency used for rounding and display.
type CurrencyInfo struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimal_places"`
}

// NormalizeCurrencyCode upper-cases and trims a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCurrencyCode reports whether code is three ASCII letters.
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// RoundHalfUp rounds to places decimals. Amounts in this package are never negative
// when rounded, where half-away-from-zero and half-up agree.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Format renders amount with the currency symbol, e.g. "RM 100.00".
func (c CurrencyInfo) Format(amount decimal.Decimal) string {
	s := RoundHalfUp(amount, c.DecimalPlaces).StringFixed(c.DecimalPlaces)
	if c.Symbol == "" {
		return c.Code + " " + s
	}
	return c.Symbol + " " + s
}
