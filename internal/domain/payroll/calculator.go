package payroll

import (
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of decimals kept on every computed amount
const moneyPlaces = 2

// CalculationInput carries everything needed to compute a salary
type CalculationInput struct {
	BasicSalary decimal.Decimal
	Attendance  Attendance

	Allowances             LineItems
	Deductions             LineItems
	DisciplinaryDeductions LineItems
	OtherAllowances        LineItems
	OtherDeductions        LineItems

	Bonus              decimal.Decimal
	QualityBonus       decimal.Decimal
	OvertimeHours      decimal.Decimal
	OvertimeRate       decimal.Decimal
	Regularization     decimal.Decimal
	TransportDeduction decimal.Decimal
	AdvanceSalary      decimal.Decimal
	ProductLoss        decimal.Decimal

	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
}

// Breakdown holds the derived amounts of a salary, each rounded to cents
type Breakdown struct {
	RealSalary      decimal.Decimal
	DaysAbsent      int
	DaysDeduction   decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossSalary     decimal.Decimal
	NetSalary       decimal.Decimal
	NetInUSD        decimal.Decimal
	NetInCDF        decimal.Decimal
}

// Validate checks the scalar inputs. Line items are already normalized.
func (in CalculationInput) Validate() shared.ValidationErrors {
	errs := in.Attendance.Validate()

	nonNegative := []struct {
		field string
		value decimal.Decimal
	}{
		{"basic_salary", in.BasicSalary},
		{"bonus", in.Bonus},
		{"quality_bonus", in.QualityBonus},
		{"overtime_hours", in.OvertimeHours},
		{"overtime_rate", in.OvertimeRate},
		{"regularization", in.Regularization},
		{"transport_deduction", in.TransportDeduction},
		{"advance_salary", in.AdvanceSalary},
		{"product_loss", in.ProductLoss},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			errs.Add(f.field, "Must be greater than or equal to 0")
		}
	}

	if !in.Currency.IsValid() {
		errs.Add("currency", "Must be one of: USD CDF")
	}
	if !in.ExchangeRate.IsPositive() {
		errs.Add("exchange_rate", "Must be greater than 0")
	}
	return errs
}

// Calculate pro-rates the base salary, aggregates allowances and
// deductions, and projects the net amount into both currencies.
// Each component sum keeps full precision and is rounded once; gross and
// net are derived from the rounded components so gross = real + allowances
// holds exactly on the stored values.
func Calculate(in CalculationInput) (Breakdown, error) {
	if errs := in.Validate(); errs.HasErrors() {
		return Breakdown{}, errs
	}

	pro := in.Attendance.Prorate()

	overtime := in.OvertimeHours.Mul(in.OvertimeRate)
	totalAllowances := in.Allowances.Total().
		Add(in.Bonus).
		Add(in.QualityBonus).
		Add(overtime).
		Add(in.Regularization).
		Add(in.OtherAllowances.Total())

	totalDeductions := in.Deductions.Total().
		Add(in.TransportDeduction).
		Add(in.AdvanceSalary).
		Add(pro.DaysDeduction).
		Add(in.DisciplinaryDeductions.Total()).
		Add(in.ProductLoss).
		Add(in.OtherDeductions.Total())

	realSalary := pro.RealSalary.Round(moneyPlaces)
	totalAllowances = totalAllowances.Round(moneyPlaces)
	totalDeductions = totalDeductions.Round(moneyPlaces)

	gross := realSalary.Add(totalAllowances)
	net := decimal.Max(decimal.Zero, gross.Sub(totalDeductions))

	rate, err := valueobject.NewExchangeRate(in.ExchangeRate)
	if err != nil {
		return Breakdown{}, shared.NewFieldError("exchange_rate", "Must be greater than 0")
	}
	dual, err := valueobject.ConvertNet(net, in.Currency, rate)
	if err != nil {
		return Breakdown{}, shared.NewFieldError("currency", "Must be one of: USD CDF")
	}

	return Breakdown{
		RealSalary:      realSalary,
		DaysAbsent:      pro.DaysAbsent,
		DaysDeduction:   pro.DaysDeduction.Round(moneyPlaces),
		TotalAllowances: totalAllowances,
		TotalDeductions: totalDeductions,
		GrossSalary:     gross,
		NetSalary:       net,
		NetInUSD:        dual.USD.Round(moneyPlaces),
		NetInCDF:        dual.CDF.Round(moneyPlaces),
	}, nil
}
