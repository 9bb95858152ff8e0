package payroll

import (
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxDaysInPeriod is the upper bound for total_days
const MaxDaysInPeriod = 31

// Attendance holds the inputs used to pro-rate a salary
type Attendance struct {
	DailyRate   decimal.Decimal
	DaysPresent int
	TotalDays   int
}

// Proration is the attendance-adjusted part of a salary
type Proration struct {
	RealSalary    decimal.Decimal
	DaysAbsent    int
	DaysDeduction decimal.Decimal
}

// Validate checks attendance bounds
func (a Attendance) Validate() shared.ValidationErrors {
	errs := shared.ValidationErrors{}
	if a.DailyRate.IsNegative() {
		errs.Add("daily_rate", "Must be greater than or equal to 0")
	}
	if a.TotalDays < 1 || a.TotalDays > MaxDaysInPeriod {
		errs.Add("total_days", "Must be between 1 and 31")
	}
	if a.DaysPresent < 0 {
		errs.Add("days_present", "Must be greater than or equal to 0")
	} else if a.DaysPresent > a.TotalDays {
		errs.Add("days_present", "Must not exceed total_days")
	}
	return errs
}

// Prorate computes the real salary and absence deduction. Amounts are
// unrounded.
func (a Attendance) Prorate() Proration {
	absent := a.TotalDays - a.DaysPresent
	return Proration{
		RealSalary:    a.DailyRate.Mul(decimal.NewFromInt(int64(a.DaysPresent))),
		DaysAbsent:    absent,
		DaysDeduction: a.DailyRate.Mul(decimal.NewFromInt(int64(absent))),
	}
}
