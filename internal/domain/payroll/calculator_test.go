package payroll

import (
	"fmt"
	"testing"

	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func exampleInput() CalculationInput {
	return CalculationInput{
		BasicSalary:  d("520"),
		Attendance:   Attendance{DailyRate: d("20"), TotalDays: 26, DaysPresent: 24},
		Allowances:   LineItems{{Description: "Transport", Amount: d("50")}},
		Deductions:   LineItems{},
		Bonus:        decimal.Zero,
		Currency:     valueobject.USD,
		ExchangeRate: d("2800"),
	}
}

func TestCalculate_WorkedExample(t *testing.T) {
	b, err := Calculate(exampleInput())
	require.NoError(t, err)

	assert.Equal(t, "480.00", b.RealSalary.StringFixed(2))
	assert.Equal(t, 2, b.DaysAbsent)
	assert.Equal(t, "40.00", b.DaysDeduction.StringFixed(2))
	assert.Equal(t, "50.00", b.TotalAllowances.StringFixed(2))
	assert.Equal(t, "40.00", b.TotalDeductions.StringFixed(2))
	assert.Equal(t, "530.00", b.GrossSalary.StringFixed(2))
	assert.Equal(t, "490.00", b.NetSalary.StringFixed(2))
	assert.Equal(t, "490.00", b.NetInUSD.StringFixed(2))
	assert.Equal(t, "1372000.00", b.NetInCDF.StringFixed(2))
}

func TestCalculate_AllAdjustments(t *testing.T) {
	in := CalculationInput{
		BasicSalary:            d("600"),
		Attendance:             Attendance{DailyRate: d("25"), TotalDays: 24, DaysPresent: 20},
		Allowances:             LineItems{{Amount: d("10")}, {Amount: d("5.5")}},
		Deductions:             LineItems{{Amount: d("3")}},
		DisciplinaryDeductions: LineItems{{Amount: d("7")}},
		OtherAllowances:        LineItems{{Amount: d("2")}},
		OtherDeductions:        LineItems{{Amount: d("1")}},
		Bonus:                  d("20"),
		QualityBonus:           d("15"),
		OvertimeHours:          d("4"),
		OvertimeRate:           d("2.5"),
		Regularization:         d("8"),
		TransportDeduction:     d("6"),
		AdvanceSalary:          d("50"),
		ProductLoss:            d("4"),
		Currency:               valueobject.CDF,
		ExchangeRate:           d("2500"),
	}

	b, err := Calculate(in)
	require.NoError(t, err)

	// real = 25*20 = 500, absence = 25*4 = 100
	assert.Equal(t, "500.00", b.RealSalary.StringFixed(2))
	assert.Equal(t, "100.00", b.DaysDeduction.StringFixed(2))
	// 15.5 + 20 + 15 + 10 + 8 + 2
	assert.Equal(t, "70.50", b.TotalAllowances.StringFixed(2))
	// 3 + 6 + 50 + 100 + 7 + 4 + 1
	assert.Equal(t, "171.00", b.TotalDeductions.StringFixed(2))
	assert.Equal(t, "570.50", b.GrossSalary.StringFixed(2))
	assert.Equal(t, "399.50", b.NetSalary.StringFixed(2))
	assert.Equal(t, "399.50", b.NetInCDF.StringFixed(2))
	assert.Equal(t, "0.16", b.NetInUSD.StringFixed(2))
}

func TestCalculate_NetNeverNegative(t *testing.T) {
	in := exampleInput()
	in.AdvanceSalary = d("10000")
	in.Deductions = LineItems{{Description: "Loan", Amount: d("999")}}

	b, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, b.NetSalary.IsZero())
	assert.True(t, b.NetInUSD.IsZero())
	assert.True(t, b.NetInCDF.IsZero())
	assert.True(t, b.TotalDeductions.GreaterThan(b.GrossSalary))
}

func TestCalculate_Invariants(t *testing.T) {
	rates := []string{"0", "1.25", "20", "33.33", "10.125", "19.2308"}
	extras := []string{"0", "0.01", "0.125", "0.005", "45.5", "1000"}

	for _, rate := range rates {
		for total := 1; total <= 31; total += 6 {
			for present := 0; present <= total; present += 3 {
				for _, extra := range extras {
					name := fmt.Sprintf("rate=%s total=%d present=%d extra=%s", rate, total, present, extra)
					in := CalculationInput{
						BasicSalary:   d("520"),
						Attendance:    Attendance{DailyRate: d(rate), TotalDays: total, DaysPresent: present},
						Allowances:    LineItems{{Amount: d(extra)}},
						Deductions:    LineItems{{Amount: d(extra)}},
						Bonus:         d(extra),
						AdvanceSalary: d(extra),
						Currency:      valueobject.USD,
						ExchangeRate:  d("2800"),
					}

					b, err := Calculate(in)
					require.NoError(t, err, name)

					assert.False(t, b.NetSalary.IsNegative(), name)
					assert.True(t, b.GrossSalary.Equal(b.RealSalary.Add(b.TotalAllowances)), name)
					assert.True(t, b.NetSalary.Equal(decimal.Max(decimal.Zero, b.GrossSalary.Sub(b.TotalDeductions))), name)
					assert.Equal(t, total-present, b.DaysAbsent, name)
					assert.True(t, b.DaysDeduction.Equal(d(rate).Mul(decimal.NewFromInt(int64(total-present))).Round(2)), name)
					if present == total {
						assert.True(t, b.DaysDeduction.IsZero(), name)
					}
				}
			}
		}
	}
}

func TestCalculate_HalfCentComponentsStayConsistent(t *testing.T) {
	in := CalculationInput{
		BasicSalary:  d("10.125"),
		Attendance:   Attendance{DailyRate: d("10.125"), TotalDays: 1, DaysPresent: 1},
		Allowances:   LineItems{{Amount: d("0.125")}},
		Deductions:   LineItems{{Amount: d("0.005")}},
		Currency:     valueobject.USD,
		ExchangeRate: d("2800"),
	}

	b, err := Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, "10.13", b.RealSalary.StringFixed(2))
	assert.Equal(t, "0.13", b.TotalAllowances.StringFixed(2))
	assert.Equal(t, "10.26", b.GrossSalary.StringFixed(2))
	assert.Equal(t, "0.01", b.TotalDeductions.StringFixed(2))
	assert.Equal(t, "10.25", b.NetSalary.StringFixed(2))
}

func TestCalculate_RoundsOnlyAtOutput(t *testing.T) {
	in := exampleInput()
	in.Attendance = Attendance{DailyRate: d("520").Div(d("26")), TotalDays: 26, DaysPresent: 26}
	in.Allowances = LineItems{{Amount: d("0.004")}, {Amount: d("0.004")}}

	b, err := Calculate(in)
	require.NoError(t, err)

	// 0.004 + 0.004 = 0.008 rounds to 0.01; rounding each item first would give 0.00
	assert.Equal(t, "0.01", b.TotalAllowances.StringFixed(2))
	assert.Equal(t, "520.00", b.RealSalary.StringFixed(2))
}

func TestCalculate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CalculationInput)
		field  string
	}{
		{"zero exchange rate", func(in *CalculationInput) { in.ExchangeRate = decimal.Zero }, "exchange_rate"},
		{"negative exchange rate", func(in *CalculationInput) { in.ExchangeRate = d("-1") }, "exchange_rate"},
		{"unknown currency", func(in *CalculationInput) { in.Currency = "EUR" }, "currency"},
		{"total days zero", func(in *CalculationInput) { in.Attendance.TotalDays = 0 }, "total_days"},
		{"total days over 31", func(in *CalculationInput) { in.Attendance.TotalDays = 32 }, "total_days"},
		{"present exceeds total", func(in *CalculationInput) { in.Attendance.DaysPresent = 27 }, "days_present"},
		{"negative present", func(in *CalculationInput) { in.Attendance.DaysPresent = -1 }, "days_present"},
		{"negative daily rate", func(in *CalculationInput) { in.Attendance.DailyRate = d("-1") }, "daily_rate"},
		{"negative basic salary", func(in *CalculationInput) { in.BasicSalary = d("-1") }, "basic_salary"},
		{"negative bonus", func(in *CalculationInput) { in.Bonus = d("-0.01") }, "bonus"},
		{"negative overtime hours", func(in *CalculationInput) { in.OvertimeHours = d("-2") }, "overtime_hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := exampleInput()
			tt.mutate(&in)

			_, err := Calculate(in)
			require.Error(t, err)
			var verrs shared.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestAttendance_Prorate(t *testing.T) {
	p := Attendance{DailyRate: d("20"), TotalDays: 26, DaysPresent: 26}.Prorate()
	assert.Equal(t, 0, p.DaysAbsent)
	assert.True(t, p.DaysDeduction.IsZero())
	assert.Equal(t, "520", p.RealSalary.String())

	p = Attendance{DailyRate: d("20"), TotalDays: 26, DaysPresent: 0}.Prorate()
	assert.Equal(t, 26, p.DaysAbsent)
	assert.True(t, p.RealSalary.IsZero())
	assert.Equal(t, "520", p.DaysDeduction.String())
}
