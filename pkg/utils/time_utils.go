package utils

import (
	"time"

	"clubfees/internal/billing"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, billing.NewValidationError("parse", field, billing.ErrInvalidValue)
	}
	return t, nil
}

// ParseOptionalDate returns nil for a nil or empty input.
func ParseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseOptionalPeriod parses an optional YYYY-MM query value.
func ParseOptionalPeriod(s string) (*billing.Period, error) {
	if s == "" {
		return nil, nil
	}
	p, err := billing.ParsePeriod(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
