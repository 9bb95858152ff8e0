package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalaryRecordModel is the persistence model for the SalaryRecord aggregate.
// The partial unique index allows one live record per employee and period.
type SalaryRecordModel struct {
	TenantAggregateModel
	EmployeeID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_salary_records_period,priority:1,where:deleted_at IS NULL"`
	PayrollPeriodID *uuid.UUID `gorm:"type:uuid"`
	Month           string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_salary_records_period,priority:2"`
	Year            int        `gorm:"not null;uniqueIndex:idx_salary_records_period,priority:3"`

	BasicSalary decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DailyRate   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDays   int             `gorm:"not null;default:0"`
	DaysPresent int             `gorm:"not null;default:0"`
	DaysAbsent  int             `gorm:"not null;default:0"`

	Allowances             payroll.LineItems `gorm:"type:text;not null"`
	Deductions             payroll.LineItems `gorm:"type:text;not null"`
	DisciplinaryDeductions payroll.LineItems `gorm:"type:text;not null"`
	OtherAllowances        payroll.LineItems `gorm:"type:text;not null"`
	OtherDeductions        payroll.LineItems `gorm:"type:text;not null"`

	Bonus              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QualityBonus       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OvertimeHours      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OvertimeRate       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Regularization     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransportDeduction decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdvanceSalary      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProductLoss        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Currency     valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	ExchangeRate decimal.Decimal      `gorm:"type:decimal(18,6);not null"`

	RealSalary      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DaysDeduction   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAllowances decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossSalary     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetSalary       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetInUSD        decimal.Decimal `gorm:"column:net_in_usd;type:decimal(18,2);not null;default:0"`
	NetInCDF        decimal.Decimal `gorm:"column:net_in_cdf;type:decimal(18,2);not null;default:0"`

	Status      payroll.SalaryStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentDate *time.Time
	PaidBy      *uuid.UUID `gorm:"type:uuid"`
	PaidAt      *time.Time
	Notes       string         `gorm:"type:text"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalaryRecordModel) TableName() string {
	return "salary_records"
}

// ToDomain converts the persistence model to a domain SalaryRecord
func (m *SalaryRecordModel) ToDomain() *payroll.SalaryRecord {
	record := &payroll.SalaryRecord{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		EmployeeID:          m.EmployeeID,
		PayrollPeriodID:     m.PayrollPeriodID,
		Month:               m.Month,
		Year:                m.Year,

		BasicSalary: m.BasicSalary,
		DailyRate:   m.DailyRate,
		TotalDays:   m.TotalDays,
		DaysPresent: m.DaysPresent,
		DaysAbsent:  m.DaysAbsent,

		Allowances:             m.Allowances,
		Deductions:             m.Deductions,
		DisciplinaryDeductions: m.DisciplinaryDeductions,
		OtherAllowances:        m.OtherAllowances,
		OtherDeductions:        m.OtherDeductions,

		Bonus:              m.Bonus,
		QualityBonus:       m.QualityBonus,
		OvertimeHours:      m.OvertimeHours,
		OvertimeRate:       m.OvertimeRate,
		Regularization:     m.Regularization,
		TransportDeduction: m.TransportDeduction,
		AdvanceSalary:      m.AdvanceSalary,
		ProductLoss:        m.ProductLoss,

		Currency:     m.Currency,
		ExchangeRate: m.ExchangeRate,

		RealSalary:      m.RealSalary,
		DaysDeduction:   m.DaysDeduction,
		TotalAllowances: m.TotalAllowances,
		TotalDeductions: m.TotalDeductions,
		GrossSalary:     m.GrossSalary,
		NetSalary:       m.NetSalary,
		NetInUSD:        m.NetInUSD,
		NetInCDF:        m.NetInCDF,

		Status:      m.Status,
		PaymentDate: m.PaymentDate,
		PaidBy:      m.PaidBy,
		PaidAt:      m.PaidAt,
		Notes:       m.Notes,
	}
	if m.DeletedAt.Valid {
		deletedAt := m.DeletedAt.Time
		record.DeletedAt = &deletedAt
	}
	return record
}

// FromDomain populates the persistence model from a domain SalaryRecord
func (m *SalaryRecordModel) FromDomain(s *payroll.SalaryRecord) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.EmployeeID = s.EmployeeID
	m.PayrollPeriodID = s.PayrollPeriodID
	m.Month = s.Month
	m.Year = s.Year

	m.BasicSalary = s.BasicSalary
	m.DailyRate = s.DailyRate
	m.TotalDays = s.TotalDays
	m.DaysPresent = s.DaysPresent
	m.DaysAbsent = s.DaysAbsent

	m.Allowances = s.Allowances
	m.Deductions = s.Deductions
	m.DisciplinaryDeductions = s.DisciplinaryDeductions
	m.OtherAllowances = s.OtherAllowances
	m.OtherDeductions = s.OtherDeductions

	m.Bonus = s.Bonus
	m.QualityBonus = s.QualityBonus
	m.OvertimeHours = s.OvertimeHours
	m.OvertimeRate = s.OvertimeRate
	m.Regularization = s.Regularization
	m.TransportDeduction = s.TransportDeduction
	m.AdvanceSalary = s.AdvanceSalary
	m.ProductLoss = s.ProductLoss

	m.Currency = s.Currency
	m.ExchangeRate = s.ExchangeRate

	m.RealSalary = s.RealSalary
	m.DaysDeduction = s.DaysDeduction
	m.TotalAllowances = s.TotalAllowances
	m.TotalDeductions = s.TotalDeductions
	m.GrossSalary = s.GrossSalary
	m.NetSalary = s.NetSalary
	m.NetInUSD = s.NetInUSD
	m.NetInCDF = s.NetInCDF

	m.Status = s.Status
	m.PaymentDate = s.PaymentDate
	m.PaidBy = s.PaidBy
	m.PaidAt = s.PaidAt
	m.Notes = s.Notes
	m.DeletedAt = gorm.DeletedAt{}
	if s.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
}

// SalaryRecordModelFromDomain creates a new persistence model from a domain SalaryRecord
func SalaryRecordModelFromDomain(s *payroll.SalaryRecord) *SalaryRecordModel {
	m := &SalaryRecordModel{}
	m.FromDomain(s)
	return m
}

// EmployeeModel maps the HR employees table. Payroll only reads it.
type EmployeeModel struct {
	BaseModel
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Code        string                 `gorm:"type:varchar(50);not null"`
	Name        string                 `gorm:"type:varchar(200);not null"`
	BasicSalary decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Status      payroll.EmployeeStatus `gorm:"type:varchar(20);not null;default:'active'"`
	DeletedAt   gorm.DeletedAt         `gorm:"index"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a payroll Employee
func (m *EmployeeModel) ToDomain() *payroll.Employee {
	return &payroll.Employee{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Code:        m.Code,
		Name:        m.Name,
		BasicSalary: m.BasicSalary,
		Status:      m.Status,
	}
}

// CompensationComponentModel maps an allowance or deduction template
// assigned to an employee. Payroll only reads it.
type CompensationComponentModel struct {
	BaseModel
	TenantID        uuid.UUID               `gorm:"type:uuid;not null;index:idx_compensation_employee,priority:1"`
	EmployeeID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_compensation_employee,priority:2"`
	Kind            payroll.ComponentKind   `gorm:"type:varchar(20);not null"`
	Name            string                  `gorm:"type:varchar(200);not null"`
	CalculationType payroll.CalculationType `gorm:"type:varchar(20);not null;default:'fixed'"`
	Value           decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive        bool                    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CompensationComponentModel) TableName() string {
	return "compensation_components"
}

// ToDomain converts the persistence model to a CompensationComponent
func (m *CompensationComponentModel) ToDomain() payroll.CompensationComponent {
	return payroll.CompensationComponent{
		ID:              m.ID,
		EmployeeID:      m.EmployeeID,
		Kind:            m.Kind,
		Name:            m.Name,
		CalculationType: m.CalculationType,
		Value:           m.Value,
		IsActive:        m.IsActive,
	}
}
