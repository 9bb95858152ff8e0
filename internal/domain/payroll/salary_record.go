package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeSalaryRecord is the aggregate type name used in events
const AggregateTypeSalaryRecord = "SalaryRecord"

// SalaryStatus is the payment lifecycle state of a salary record
type SalaryStatus string

const (
	SalaryStatusPending    SalaryStatus = "pending"
	SalaryStatusProcessing SalaryStatus = "processing"
	SalaryStatusPaid       SalaryStatus = "paid"
)

// IsValid checks if the status is a valid SalaryStatus
func (s SalaryStatus) IsValid() bool {
	switch s {
	case SalaryStatusPending, SalaryStatusProcessing, SalaryStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of SalaryStatus
func (s SalaryStatus) String() string {
	return string(s)
}

// ParseSalaryStatus parses a status, treating empty as pending
func ParseSalaryStatus(s string) (SalaryStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SalaryStatusPending, nil
	}
	status := SalaryStatus(s)
	if !status.IsValid() {
		return "", shared.NewFieldError("status", "Must be one of: pending processing paid")
	}
	return status, nil
}

// SalaryDetails is the caller-supplied content of a salary record
type SalaryDetails struct {
	Period          Period
	Input           CalculationInput
	Status          SalaryStatus
	PaymentDate     *time.Time
	PayrollPeriodID *uuid.UUID
	Notes           string
}

// SalaryRecord is the payroll aggregate root: one per employee per period
type SalaryRecord struct {
	shared.TenantAggregateRoot
	EmployeeID      uuid.UUID
	PayrollPeriodID *uuid.UUID
	Month           string
	Year            int

	BasicSalary decimal.Decimal
	DailyRate   decimal.Decimal
	TotalDays   int
	DaysPresent int
	DaysAbsent  int

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

	RealSalary      decimal.Decimal
	DaysDeduction   decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossSalary     decimal.Decimal
	NetSalary       decimal.Decimal
	NetInUSD        decimal.Decimal
	NetInCDF        decimal.Decimal

	Status      SalaryStatus
	PaymentDate *time.Time
	PaidBy      *uuid.UUID
	PaidAt      *time.Time
	Notes       string
	DeletedAt   *time.Time
}

// NewSalaryRecord validates the details, computes every derived amount and
// returns a new record owned by tenantID.
func NewSalaryRecord(tenantID, employeeID uuid.UUID, details SalaryDetails, principal uuid.UUID) (*SalaryRecord, error) {
	if employeeID == uuid.Nil {
		return nil, shared.NewFieldError("employee_id", "This field is required")
	}
	if principal == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Acting user ID cannot be empty")
	}

	record := &SalaryRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, principal),
		EmployeeID:          employeeID,
		Status:              SalaryStatusPending,
	}
	if err := record.apply(details, principal); err != nil {
		return nil, err
	}

	record.AddDomainEvent(NewSalaryRecordCreatedEvent(record))
	if record.Status == SalaryStatusPaid {
		record.AddDomainEvent(NewSalaryRecordPaidEvent(record))
	}
	return record, nil
}

// Update replaces the record content and recomputes every derived amount.
// Moving into paid stamps the payment fields; paid to paid is not guarded here.
func (s *SalaryRecord) Update(details SalaryDetails, principal uuid.UUID) error {
	if principal == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Acting user ID cannot be empty")
	}
	wasPaid := s.Status == SalaryStatusPaid
	if err := s.apply(details, principal); err != nil {
		return err
	}
	s.Touch(principal)

	s.AddDomainEvent(NewSalaryRecordUpdatedEvent(s))
	if !wasPaid && s.Status == SalaryStatusPaid {
		s.AddDomainEvent(NewSalaryRecordPaidEvent(s))
	}
	return nil
}

// MarkAsPaid moves the record into paid, rejecting records already paid
func (s *SalaryRecord) MarkAsPaid(principal uuid.UUID, paymentDate *time.Time) error {
	if s.Status == SalaryStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Salary has already been marked as paid")
	}
	if principal == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Acting user ID cannot be empty")
	}

	s.markPaid(principal, paymentDate, time.Now())
	s.Touch(principal)

	s.AddDomainEvent(NewSalaryRecordPaidEvent(s))
	return nil
}

// Delete soft-deletes the record
func (s *SalaryRecord) Delete(principal uuid.UUID) error {
	if s.DeletedAt != nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Salary record is already deleted")
	}
	now := time.Now()
	s.DeletedAt = &now
	s.Touch(principal)

	s.AddDomainEvent(NewSalaryRecordDeletedEvent(s, principal))
	return nil
}

// IsPaid returns true if the salary has been paid
func (s *SalaryRecord) IsPaid() bool {
	return s.Status == SalaryStatusPaid
}

// Period returns the payroll period of the record
func (s *SalaryRecord) Period() Period {
	return Period{Month: s.Month, Year: s.Year}
}

// CalculationInput rebuilds the inputs the record was computed from
func (s *SalaryRecord) CalculationInput() CalculationInput {
	return CalculationInput{
		BasicSalary: s.BasicSalary,
		Attendance: Attendance{
			DailyRate:   s.DailyRate,
			DaysPresent: s.DaysPresent,
			TotalDays:   s.TotalDays,
		},
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
		Currency:               s.Currency,
		ExchangeRate:           s.ExchangeRate,
	}
}

// Breakdown returns the stored derived amounts
func (s *SalaryRecord) Breakdown() Breakdown {
	return Breakdown{
		RealSalary:      s.RealSalary,
		DaysAbsent:      s.DaysAbsent,
		DaysDeduction:   s.DaysDeduction,
		TotalAllowances: s.TotalAllowances,
		TotalDeductions: s.TotalDeductions,
		GrossSalary:     s.GrossSalary,
		NetSalary:       s.NetSalary,
		NetInUSD:        s.NetInUSD,
		NetInCDF:        s.NetInCDF,
	}
}

func (s *SalaryRecord) apply(details SalaryDetails, principal uuid.UUID) error {
	status := details.Status
	if status == "" {
		status = SalaryStatusPending
	}
	if !status.IsValid() {
		return shared.NewFieldError("status", "Must be one of: pending processing paid")
	}
	if details.Period.Month == "" {
		return shared.NewFieldError("month", "This field is required")
	}

	breakdown, err := Calculate(details.Input)
	if err != nil {
		return err
	}

	in := details.Input
	s.Month = details.Period.Month
	s.Year = details.Period.Year
	s.PayrollPeriodID = details.PayrollPeriodID
	s.Notes = strings.TrimSpace(details.Notes)

	s.BasicSalary = in.BasicSalary
	s.DailyRate = in.Attendance.DailyRate
	s.TotalDays = in.Attendance.TotalDays
	s.DaysPresent = in.Attendance.DaysPresent

	s.Allowances = orEmpty(in.Allowances)
	s.Deductions = orEmpty(in.Deductions)
	s.DisciplinaryDeductions = orEmpty(in.DisciplinaryDeductions)
	s.OtherAllowances = orEmpty(in.OtherAllowances)
	s.OtherDeductions = orEmpty(in.OtherDeductions)

	s.Bonus = in.Bonus
	s.QualityBonus = in.QualityBonus
	s.OvertimeHours = in.OvertimeHours
	s.OvertimeRate = in.OvertimeRate
	s.Regularization = in.Regularization
	s.TransportDeduction = in.TransportDeduction
	s.AdvanceSalary = in.AdvanceSalary
	s.ProductLoss = in.ProductLoss

	s.Currency = in.Currency
	s.ExchangeRate = in.ExchangeRate

	s.DaysAbsent = breakdown.DaysAbsent
	s.RealSalary = breakdown.RealSalary
	s.DaysDeduction = breakdown.DaysDeduction
	s.TotalAllowances = breakdown.TotalAllowances
	s.TotalDeductions = breakdown.TotalDeductions
	s.GrossSalary = breakdown.GrossSalary
	s.NetSalary = breakdown.NetSalary
	s.NetInUSD = breakdown.NetInUSD
	s.NetInCDF = breakdown.NetInCDF

	if s.Status != SalaryStatusPaid && status == SalaryStatusPaid {
		s.markPaid(principal, details.PaymentDate, time.Now())
	} else {
		s.Status = status
		if details.PaymentDate != nil {
			s.PaymentDate = details.PaymentDate
		}
	}
	return nil
}

func (s *SalaryRecord) markPaid(principal uuid.UUID, paymentDate *time.Time, now time.Time) {
	paidAt := now
	if paymentDate != nil {
		paidAt = *paymentDate
	}
	s.Status = SalaryStatusPaid
	s.PaidBy = &principal
	s.PaidAt = &paidAt
	s.PaymentDate = &paidAt
}

// String is used in logs
func (s *SalaryRecord) String() string {
	return fmt.Sprintf("salary %s employee=%s period=%s status=%s", s.ID, s.EmployeeID, s.Period(), s.Status)
}

func orEmpty(items LineItems) LineItems {
	if items == nil {
		return LineItems{}
	}
	return items
}
