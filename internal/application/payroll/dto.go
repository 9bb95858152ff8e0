package payroll

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// SalaryInput holds the fields the salary calculation is derived from.
// Line-item fields accept a JSON list, a JSON-encoded string of a list, or null.
type SalaryInput struct {
	BasicSalary *decimal.Decimal `json:"basic_salary" binding:"required"`
	DailyRate   *decimal.Decimal `json:"daily_rate" binding:"required"`
	TotalDays   int              `json:"total_days" binding:"required,min=1,max=31"`
	DaysPresent *int             `json:"days_present" binding:"required,min=0,max=31"`

	Allowances             json.RawMessage `json:"allowances"`
	Deductions             json.RawMessage `json:"deductions"`
	DisciplinaryDeductions json.RawMessage `json:"disciplinary_deductions"`
	OtherAllowances        json.RawMessage `json:"other_allowances"`
	OtherDeductions        json.RawMessage `json:"other_deductions"`

	Bonus              decimal.Decimal `json:"bonus"`
	QualityBonus       decimal.Decimal `json:"quality_bonus"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	OvertimeRate       decimal.Decimal `json:"overtime_rate"`
	Regularization     decimal.Decimal `json:"regularization"`
	TransportDeduction decimal.Decimal `json:"transport_deduction"`
	AdvanceSalary      decimal.Decimal `json:"advance_salary"`
	ProductLoss        decimal.Decimal `json:"product_loss"`

	Currency     string           `json:"currency" binding:"required"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
}

// SalaryRequest is the body of create and update salary requests
type SalaryRequest struct {
	EmployeeID      uuid.UUID  `json:"employee_id" binding:"required"`
	Month           string     `json:"month" binding:"required,max=20"`
	Year            int        `json:"year" binding:"required"`
	PayrollPeriodID *uuid.UUID `json:"payroll_period_id"`
	SalaryInput

	Status      string     `json:"status"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       string     `json:"notes" binding:"max=1000"`
}

// CalculateSalaryRequest previews a salary without persisting it
type CalculateSalaryRequest struct {
	SalaryInput
}

// MarkPaidRequest is the optional body of the mark-paid operation
type MarkPaidRequest struct {
	PaymentDate *time.Time `json:"payment_date"`
}

// GenerateRequest asks for pending salaries for every active employee
type GenerateRequest struct {
	Month           string           `json:"month" binding:"required,max=20"`
	Year            int              `json:"year" binding:"required"`
	PayrollPeriodID *uuid.UUID       `json:"payroll_period_id"`
	Currency        string           `json:"currency"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate"`
}

// GenerateResult reports a bulk generation run
type GenerateResult struct {
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// SalaryListFilter defines filtering options for salary list queries
type SalaryListFilter struct {
	Search          string     `form:"search"`
	EmployeeID      *uuid.UUID `form:"employee_id"`
	Month           string     `form:"month"`
	Year            int        `form:"year"`
	Status          string     `form:"status" binding:"omitempty,oneof=pending processing paid"`
	Currency        string     `form:"currency" binding:"omitempty,oneof=USD CDF"`
	PayrollPeriodID *uuid.UUID `form:"payroll_period_id"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// EmployeeSummary is the employee relation embedded in salary responses
type EmployeeSummary struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// SalaryResponse represents a salary record in API responses
type SalaryResponse struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	EmployeeID      uuid.UUID        `json:"employee_id"`
	Employee        *EmployeeSummary `json:"employee,omitempty"`
	PayrollPeriodID *uuid.UUID       `json:"payroll_period_id,omitempty"`
	Month           string           `json:"month"`
	Year            int              `json:"year"`

	BasicSalary decimal.Decimal `json:"basic_salary"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	TotalDays   int             `json:"total_days"`
	DaysPresent int             `json:"days_present"`
	DaysAbsent  int             `json:"days_absent"`

	Allowances             payroll.LineItems `json:"allowances"`
	Deductions             payroll.LineItems `json:"deductions"`
	DisciplinaryDeductions payroll.LineItems `json:"disciplinary_deductions"`
	OtherAllowances        payroll.LineItems `json:"other_allowances"`
	OtherDeductions        payroll.LineItems `json:"other_deductions"`

	Bonus              decimal.Decimal `json:"bonus"`
	QualityBonus       decimal.Decimal `json:"quality_bonus"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	OvertimeRate       decimal.Decimal `json:"overtime_rate"`
	Regularization     decimal.Decimal `json:"regularization"`
	TransportDeduction decimal.Decimal `json:"transport_deduction"`
	AdvanceSalary      decimal.Decimal `json:"advance_salary"`
	ProductLoss        decimal.Decimal `json:"product_loss"`

	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	RealSalary      decimal.Decimal `json:"real_salary"`
	DaysDeduction   decimal.Decimal `json:"days_deduction"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	NetInUSD        decimal.Decimal `json:"net_in_usd"`
	NetInCDF        decimal.Decimal `json:"net_in_cdf"`

	Status      string     `json:"status"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	PaidBy      *uuid.UUID `json:"paid_by,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// BreakdownResponse is the result of a salary preview
type BreakdownResponse struct {
	RealSalary      decimal.Decimal `json:"real_salary"`
	DaysAbsent      int             `json:"days_absent"`
	DaysDeduction   decimal.Decimal `json:"days_deduction"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	NetInUSD        decimal.Decimal `json:"net_in_usd"`
	NetInCDF        decimal.Decimal `json:"net_in_cdf"`
}

// SummaryResponse aggregates one payroll period
type SummaryResponse struct {
	Month         string           `json:"month"`
	Year          int              `json:"year"`
	Count         int64            `json:"count"`
	CountByStatus map[string]int64 `json:"count_by_status"`
	TotalNetUSD   decimal.Decimal  `json:"total_net_usd"`
	TotalNetCDF   decimal.Decimal  `json:"total_net_cdf"`
	TotalGross    decimal.Decimal  `json:"total_gross"`
}

// ToSalaryResponse converts a domain SalaryRecord to a response
func ToSalaryResponse(s *payroll.SalaryRecord, employee *payroll.Employee) SalaryResponse {
	resp := SalaryResponse{
		ID:                     s.ID,
		TenantID:               s.TenantID,
		EmployeeID:             s.EmployeeID,
		PayrollPeriodID:        s.PayrollPeriodID,
		Month:                  s.Month,
		Year:                   s.Year,
		BasicSalary:            s.BasicSalary,
		DailyRate:              s.DailyRate,
		TotalDays:              s.TotalDays,
		DaysPresent:            s.DaysPresent,
		DaysAbsent:             s.DaysAbsent,
		Allowances:             s.Allowances,
		Deductions:             s.Deductions,
		DisciplinaryDeductions: s.DisciplinaryDeductions,
		OtherAllowances:        s.OtherAllowances,
		OtherDeductions:        s.OtherDeductions,
		Bonus:                  s.Bonus,
		QualityBonus:           s.QualityBonus,
		OvertimeHours:          s.OvertimeHours,
		OvertimeRate:           s.OvertimeRate,
		Regularization:         s.Regularization,
		TransportDeduction:     s.TransportDeduction,
		AdvanceSalary:          s.AdvanceSalary,
		ProductLoss:            s.ProductLoss,
		Currency:               s.Currency.String(),
		ExchangeRate:           s.ExchangeRate,
		RealSalary:             s.RealSalary,
		DaysDeduction:          s.DaysDeduction,
		TotalAllowances:        s.TotalAllowances,
		TotalDeductions:        s.TotalDeductions,
		GrossSalary:            s.GrossSalary,
		NetSalary:              s.NetSalary,
		NetInUSD:               s.NetInUSD,
		NetInCDF:               s.NetInCDF,
		Status:                 s.Status.String(),
		PaymentDate:            s.PaymentDate,
		PaidBy:                 s.PaidBy,
		PaidAt:                 s.PaidAt,
		Notes:                  s.Notes,
		CreatedBy:              s.CreatedBy,
		UpdatedBy:              s.UpdatedBy,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		Version:                s.Version,
	}
	if employee != nil {
		resp.Employee = &EmployeeSummary{
			ID:   employee.ID,
			Code: employee.Code,
			Name: employee.Name,
		}
	}
	return resp
}

// ToBreakdownResponse converts a domain Breakdown to a response
func ToBreakdownResponse(b payroll.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		RealSalary:      b.RealSalary,
		DaysAbsent:      b.DaysAbsent,
		DaysDeduction:   b.DaysDeduction,
		TotalAllowances: b.TotalAllowances,
		TotalDeductions: b.TotalDeductions,
		GrossSalary:     b.GrossSalary,
		NetSalary:       b.NetSalary,
		NetInUSD:        b.NetInUSD,
		NetInCDF:        b.NetInCDF,
	}
}
