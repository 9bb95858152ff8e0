package payroll

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeStatus mirrors the HR employment status
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee is the read model of an HR employee as seen by payroll
type Employee struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Code        string
	Name        string
	BasicSalary decimal.Decimal
	Status      EmployeeStatus
}

// IsActive reports whether payroll should be generated for the employee
func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}

// ComponentKind distinguishes allowance from deduction templates
type ComponentKind string

const (
	ComponentAllowance ComponentKind = "allowance"
	ComponentDeduction ComponentKind = "deduction"
)

// CalculationType says how a component amount is derived
type CalculationType string

const (
	CalculationFixed      CalculationType = "fixed"
	CalculationPercentage CalculationType = "percentage"
)

var hundred = decimal.NewFromInt(100)

// CompensationComponent is an allowance or deduction template assigned to
// an employee
type CompensationComponent struct {
	ID              uuid.UUID
	EmployeeID      uuid.UUID
	Kind            ComponentKind
	Name            string
	CalculationType CalculationType
	Value           decimal.Decimal
	IsActive        bool
}

// CalculateAmount evaluates the template against a base salary
func (c CompensationComponent) CalculateAmount(baseSalary decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.CalculationType {
	case CalculationPercentage:
		amount = baseSalary.Mul(c.Value).Div(hundred)
	default:
		amount = c.Value
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// LineItem renders the evaluated template as a salary line item
func (c CompensationComponent) LineItem(baseSalary decimal.Decimal) LineItem {
	return LineItem{Description: c.Name, Amount: c.CalculateAmount(baseSalary)}
}

// SplitComponents evaluates templates into allowance and deduction lists,
// skipping inactive ones
func SplitComponents(components []CompensationComponent, baseSalary decimal.Decimal) (allowances, deductions LineItems) {
	allowances = LineItems{}
	deductions = LineItems{}
	for _, c := range components {
		if !c.IsActive {
			continue
		}
		switch c.Kind {
		case ComponentAllowance:
			allowances = append(allowances, c.LineItem(baseSalary))
		case ComponentDeduction:
			deductions = append(deductions, c.LineItem(baseSalary))
		}
	}
	return allowances, deductions
}
