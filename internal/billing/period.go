package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies one billing cycle
type Period struct {
	Month string `json:"month"` // Full English month name, e.g. March
	Year  int    `json:"year"`  // Four digit year
}

// CurrentPeriod returns the billing period containing now
func CurrentPeriod(now time.Time) Period {
	return Period{Month: now.Month().String(), Year: now.Year()}
}

// ParsePeriod normalizes a client supplied month and year.
// The month may be a full name, a three letter abbreviation or a number 1-12.
func ParsePeriod(month string, year int) (Period, error) {
	m, ok := parseMonth(month)
	if !ok {
		return Period{}, fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 2100 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return Period{Month: m.String(), Year: year}, nil
}

// Start returns midnight on the first day of the period
func (p Period) Start() time.Time {
	m, _ := parseMonth(p.Month)
	return time.Date(p.Year, m, 1, 0, 0, 0, 0, time.Local)
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

func parseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, true
		}
	}
	return 0, false
}
