package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is one calendar month, keyed as YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[4] != '-' || !digits(s[:4]) || !digits(s[5:]) {
		return Period{}, NewFieldError("ParsePeriod", "period", ErrInvalidPeriod)
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y < 1 {
		return Period{}, NewFieldError("ParsePeriod", "period", ErrInvalidPeriod)
	}
	m, err := strconv.Atoi(s[5:])
	if err != nil || m < 1 || m > 12 {
		return Period{}, NewFieldError("ParsePeriod", "period", ErrInvalidPeriod)
	}
	return Period{Year: y, Month: time.Month(m)}, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// PeriodOf returns the UTC period containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start is the first day of the period at UTC midnight.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Start().AddDate(0, n, 0))
}

func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

// MonthsSince is the signed month distance from other to p.
func (p Period) MonthsSince(other Period) int {
	return p.index() - other.index()
}

func (p Period) Before(other Period) bool {
	return p.index() < other.index()
}

func (p Period) After(other Period) bool {
	return p.index() > other.index()
}

// LastDay is the number of days in the period.
func (p Period) LastDay() int {
	return p.Start().AddDate(0, 1, -1).Day()
}

// DayIn returns the given day-of-month inside p, clamped to the last valid day.
func (p Period) DayIn(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := p.LastDay(); day > last {
		day = last
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
