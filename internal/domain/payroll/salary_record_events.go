package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeSalaryRecordCreated = "SalaryRecordCreated"
	EventTypeSalaryRecordUpdated = "SalaryRecordUpdated"
	EventTypeSalaryRecordPaid    = "SalaryRecordPaid"
	EventTypeSalaryRecordDeleted = "SalaryRecordDeleted"
	EventTypePayrollGenerated    = "PayrollGenerated"
)

// SalaryRecordCreatedEvent is raised when a salary record is created
type SalaryRecordCreatedEvent struct {
	shared.BaseDomainEvent
	SalaryID   uuid.UUID            `json:"salary_id"`
	EmployeeID uuid.UUID            `json:"employee_id"`
	Month      string               `json:"month"`
	Year       int                  `json:"year"`
	Status     SalaryStatus         `json:"status"`
	Currency   valueobject.Currency `json:"currency"`
	NetSalary  decimal.Decimal      `json:"net_salary"`
	CreatedBy  *uuid.UUID           `json:"created_by,omitempty"`
}

// NewSalaryRecordCreatedEvent creates a new SalaryRecordCreatedEvent
func NewSalaryRecordCreatedEvent(s *SalaryRecord) *SalaryRecordCreatedEvent {
	return &SalaryRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalaryRecordCreated, AggregateTypeSalaryRecord, s.ID, s.TenantID),
		SalaryID:        s.ID,
		EmployeeID:      s.EmployeeID,
		Month:           s.Month,
		Year:            s.Year,
		Status:          s.Status,
		Currency:        s.Currency,
		NetSalary:       s.NetSalary,
		CreatedBy:       s.CreatedBy,
	}
}

// SalaryRecordUpdatedEvent is raised when a salary record is recomputed
type SalaryRecordUpdatedEvent struct {
	shared.BaseDomainEvent
	SalaryID   uuid.UUID       `json:"salary_id"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	Status     SalaryStatus    `json:"status"`
	NetSalary  decimal.Decimal `json:"net_salary"`
	UpdatedBy  *uuid.UUID      `json:"updated_by,omitempty"`
}

// NewSalaryRecordUpdatedEvent creates a new SalaryRecordUpdatedEvent
func NewSalaryRecordUpdatedEvent(s *SalaryRecord) *SalaryRecordUpdatedEvent {
	return &SalaryRecordUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalaryRecordUpdated, AggregateTypeSalaryRecord, s.ID, s.TenantID),
		SalaryID:        s.ID,
		EmployeeID:      s.EmployeeID,
		Status:          s.Status,
		NetSalary:       s.NetSalary,
		UpdatedBy:       s.UpdatedBy,
	}
}

// SalaryRecordPaidEvent is raised when a salary moves into paid
type SalaryRecordPaidEvent struct {
	shared.BaseDomainEvent
	SalaryID   uuid.UUID       `json:"salary_id"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	NetInUSD   decimal.Decimal `json:"net_in_usd"`
	NetInCDF   decimal.Decimal `json:"net_in_cdf"`
	PaidBy     uuid.UUID       `json:"paid_by"`
	PaidAt     time.Time       `json:"paid_at"`
}

// NewSalaryRecordPaidEvent creates a new SalaryRecordPaidEvent
func NewSalaryRecordPaidEvent(s *SalaryRecord) *SalaryRecordPaidEvent {
	event := &SalaryRecordPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalaryRecordPaid, AggregateTypeSalaryRecord, s.ID, s.TenantID),
		SalaryID:        s.ID,
		EmployeeID:      s.EmployeeID,
		Month:           s.Month,
		Year:            s.Year,
		NetInUSD:        s.NetInUSD,
		NetInCDF:        s.NetInCDF,
	}
	if s.PaidBy != nil {
		event.PaidBy = *s.PaidBy
	}
	if s.PaidAt != nil {
		event.PaidAt = *s.PaidAt
	}
	return event
}

// SalaryRecordDeletedEvent is raised when a salary record is soft-deleted
type SalaryRecordDeletedEvent struct {
	shared.BaseDomainEvent
	SalaryID   uuid.UUID `json:"salary_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Month      string    `json:"month"`
	Year       int       `json:"year"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
}

// NewSalaryRecordDeletedEvent creates a new SalaryRecordDeletedEvent
func NewSalaryRecordDeletedEvent(s *SalaryRecord, deletedBy uuid.UUID) *SalaryRecordDeletedEvent {
	return &SalaryRecordDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalaryRecordDeleted, AggregateTypeSalaryRecord, s.ID, s.TenantID),
		SalaryID:        s.ID,
		EmployeeID:      s.EmployeeID,
		Month:           s.Month,
		Year:            s.Year,
		DeletedBy:       deletedBy,
	}
}

// PayrollGeneratedEvent is raised after a bulk generation run
type PayrollGeneratedEvent struct {
	shared.BaseDomainEvent
	Month       string    `json:"month"`
	Year        int       `json:"year"`
	Count       int       `json:"count"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	GeneratedBy uuid.UUID `json:"generated_by"`
}

// NewPayrollGeneratedEvent creates a new PayrollGeneratedEvent. The tenant
// doubles as aggregate id since a run spans many records.
func NewPayrollGeneratedEvent(tenantID uuid.UUID, period Period, count, skipped, failed int, generatedBy uuid.UUID) *PayrollGeneratedEvent {
	return &PayrollGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollGenerated, "PayrollRun", tenantID, tenantID),
		Month:           period.Month,
		Year:            period.Year,
		Count:           count,
		Skipped:         skipped,
		Failed:          failed,
		GeneratedBy:     generatedBy,
	}
}
