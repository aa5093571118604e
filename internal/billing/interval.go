package billing

import "strings"

type Interval string

const (
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalSemester  Interval = "semester"
	IntervalYearly    Interval = "yearly"
	IntervalCustom    Interval = "custom"
)

// ParseInterval accepts the interval names case-insensitively; empty means monthly.
func ParseInterval(s string) (Interval, error) {
	switch i := Interval(strings.ToLower(strings.TrimSpace(s))); i {
	case "":
		return IntervalMonthly, nil
	case IntervalMonthly, IntervalQuarterly, IntervalSemester, IntervalYearly, IntervalCustom:
		return i, nil
	}
	return "", NewFieldError("ParseInterval", "interval", ErrInvalidInterval)
}

// ValidateInterval enforces a positive count for custom intervals; the count is
// ignored otherwise.
func ValidateInterval(i Interval, count int) error {
	if _, err := ParseInterval(string(i)); err != nil {
		return err
	}
	if i == IntervalCustom && count <= 0 {
		return NewFieldError("ValidateInterval", "interval_count", ErrMissingIntervalCount)
	}
	return nil
}

// MonthsPerBlock is how many calendar months one billing block covers.
func MonthsPerBlock(i Interval, count int) int {
	switch i {
	case IntervalQuarterly:
		return 3
	case IntervalSemester:
		return 6
	case IntervalYearly:
		return 12
	case IntervalCustom:
		if count > 0 {
			return count
		}
	}
	return 1
}
