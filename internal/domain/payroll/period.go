package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/repairshop/erp/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinPeriodYear = 2000
	MaxPeriodYear = 2100
)

// Period identifies one payroll cycle by month label and year
type Period struct {
	Month string
	Year  int
}

// ParsePeriod canonicalises the month label to its English name so that
// "january", "Jan", "01" and "January" all name the same period.
func ParsePeriod(month string, year int) (Period, error) {
	errs := shared.ValidationErrors{}

	canonical, ok := CanonicalMonth(month)
	if !ok {
		errs.Add("month", "Must be a month name or a number between 1 and 12")
	}
	if year < MinPeriodYear || year > MaxPeriodYear {
		errs.Add("year", fmt.Sprintf("Must be between %d and %d", MinPeriodYear, MaxPeriodYear))
	}
	if errs.HasErrors() {
		return Period{}, errs
	}
	return Period{Month: canonical, Year: year}, nil
}

// CanonicalMonth maps a month label to its English month name
func CanonicalMonth(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}

	if n, err := strconv.Atoi(label); err == nil {
		if n < 1 || n > 12 {
			return "", false
		}
		return time.Month(n).String(), true
	}

	titled := cases.Title(language.English).String(strings.ToLower(label))
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if titled == name || titled == name[:3] {
			return name, true
		}
	}
	return "", false
}

// MonthNumber returns the calendar month of the period
func (p Period) MonthNumber() time.Month {
	for m := time.January; m <= time.December; m++ {
		if m.String() == p.Month {
			return m
		}
	}
	return 0
}

// String returns "Month Year"
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Key returns a stable identifier usable in lock names
func (p Period) Key() string {
	return fmt.Sprintf("%d-%02d", p.Year, int(p.MonthNumber()))
}
