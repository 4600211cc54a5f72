package shared

import (
	"strings"
	"time"
)

// PeriodLayout is the YYYY-MM code used for reporting periods.
const PeriodLayout = "2006-01"

// NormalizePeriod trims and validates a reporting period code.
func NormalizePeriod(period string) (string, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return "", Validation("Period is required.")
	}
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return "", Validation("Period must use the YYYY-MM format.")
	}
	return period, nil
}
