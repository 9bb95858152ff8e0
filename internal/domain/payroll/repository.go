package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SalaryRecordFilter narrows salary record listings
type SalaryRecordFilter struct {
	shared.Filter
	EmployeeID      *uuid.UUID
	Month           string
	Year            int
	Status          SalaryStatus
	Currency        string
	PayrollPeriodID *uuid.UUID
}

// PeriodSummary aggregates the records of one period
type PeriodSummary struct {
	Period        Period
	Count         int64
	CountByStatus map[SalaryStatus]int64
	TotalNetUSD   decimal.Decimal
	TotalNetCDF   decimal.Decimal
	TotalGross    decimal.Decimal
}

// SalaryRecordRepository persists salary records. Implementations scope
// every query to the tenant and ignore soft-deleted rows.
type SalaryRecordRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalaryRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SalaryRecordFilter) ([]SalaryRecord, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter SalaryRecordFilter) (int64, error)

	// ExistsForPeriod reports whether a live record exists for the employee
	// and period, optionally ignoring the record excludeID.
	ExistsForPeriod(ctx context.Context, tenantID, employeeID uuid.UUID, period Period, excludeID *uuid.UUID) (bool, error)

	// FindEmployeeIDsForPeriod returns the employees that already have a
	// live record for the period.
	FindEmployeeIDsForPeriod(ctx context.Context, tenantID uuid.UUID, period Period) (map[uuid.UUID]struct{}, error)

	SummarizePeriod(ctx context.Context, tenantID uuid.UUID, period Period) (*PeriodSummary, error)

	// Save inserts or updates the record. A unique violation on the period
	// index is returned as a CONFLICT domain error.
	Save(ctx context.Context, record *SalaryRecord) error

	// Delete soft-deletes the record
	Delete(ctx context.Context, record *SalaryRecord) error
}

// EmployeeReader looks up employees owned by the HR subsystem
type EmployeeReader interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Employee, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Employee, error)
}

// CompensationReader loads the allowance and deduction templates assigned
// to an employee
type CompensationReader interface {
	FindActiveForEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]CompensationComponent, error)
}
