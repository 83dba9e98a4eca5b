package util

import (
	"regexp"
	"strconv"
	"time"

	"github.com/taxmate/taxmate-backend/internal/domain"
)

var taxPeriodPattern = regexp.MustCompile(`^(\d{4})Q([1-4])$`)

// ParseTaxPeriod resolves a quarter label like "2024Q1" into its half-open
// [start, end) date range. Quarters are calendar quarters: Q1 is January
// through March. Malformed labels fail with ErrInvalidTaxPeriod.
func ParseTaxPeriod(label string) (*domain.TaxPeriod, error) {
	m := taxPeriodPattern.FindStringSubmatch(label)
	if m == nil {
		return nil, domain.ErrInvalidTaxPeriod
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, domain.ErrInvalidTaxPeriod
	}
	quarter, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, domain.ErrInvalidTaxPeriod
	}

	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	return &domain.TaxPeriod{
		Label:   label,
		Year:    year,
		Quarter: quarter,
		Start:   start,
		End:     end,
	}, nil
}

// FormatTaxPeriod builds a quarter label like "2024Q1".
func FormatTaxPeriod(year, quarter int) string {
	return strconv.Itoa(year) + "Q" + strconv.Itoa(quarter)
}

// CurrentTaxPeriod returns the label of the quarter containing now.
func CurrentTaxPeriod(now time.Time) string {
	quarter := (int(now.Month())-1)/3 + 1
	return FormatTaxPeriod(now.Year(), quarter)
}
