package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/infrastructure/persistence/models"
	"github.com/repairshop/erp/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalaryRecordRepository implements payroll.SalaryRecordRepository using GORM
type GormSalaryRecordRepository struct {
	db *gorm.DB
}

// NewGormSalaryRecordRepository creates a new GormSalaryRecordRepository
func NewGormSalaryRecordRepository(db *gorm.DB) *GormSalaryRecordRepository {
	return &GormSalaryRecordRepository{db: db}
}

func (r *GormSalaryRecordRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return dbFromContext(ctx, r.db).Model(&models.SalaryRecordModel{}).Scopes(tenant.Scope(tenantID))
}

// FindByIDForTenant finds a live salary record by ID for a specific tenant
func (r *GormSalaryRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalaryRecord, error) {
	var model models.SalaryRecordModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Salary record not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists salary records for a tenant with filtering, sorting and pagination
func (r *GormSalaryRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SalaryRecordFilter) ([]payroll.SalaryRecord, error) {
	var salaryModels []models.SalaryRecordModel
	query := r.applyFilter(r.scoped(ctx, tenantID), filter)
	if err := query.Find(&salaryModels).Error; err != nil {
		return nil, err
	}
	records := make([]payroll.SalaryRecord, len(salaryModels))
	for i := range salaryModels {
		records[i] = *salaryModels[i].ToDomain()
	}
	return records, nil
}

// CountForTenant counts salary records for a tenant with filtering
func (r *GormSalaryRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SalaryRecordFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForPeriod reports whether a live record exists for the employee and period
func (r *GormSalaryRecordRepository) ExistsForPeriod(ctx context.Context, tenantID, employeeID uuid.UUID, period payroll.Period, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.scoped(ctx, tenantID).
		Where("employee_id = ? AND month = ? AND year = ?", employeeID, period.Month, period.Year)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindEmployeeIDsForPeriod returns the employees that already have a live record for the period
func (r *GormSalaryRecordRepository) FindEmployeeIDsForPeriod(ctx context.Context, tenantID uuid.UUID, period payroll.Period) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := r.scoped(ctx, tenantID).
		Where("month = ? AND year = ?", period.Month, period.Year).
		Pluck("employee_id", &ids).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}

const periodTotalsColumns = `status, COUNT(*) AS count,
	COALESCE(SUM(net_in_usd), 0) AS total_net_usd,
	COALESCE(SUM(net_in_cdf), 0) AS total_net_cdf,
	COALESCE(SUM(gross_salary), 0) AS total_gross`

type statusTotals struct {
	Status      payroll.SalaryStatus `gorm:"column:status"`
	Count       int64                `gorm:"column:count"`
	TotalNetUSD decimal.Decimal      `gorm:"column:total_net_usd"`
	TotalNetCDF decimal.Decimal      `gorm:"column:total_net_cdf"`
	TotalGross  decimal.Decimal      `gorm:"column:total_gross"`
}

// SummarizePeriod aggregates the live records of one period by status
func (r *GormSalaryRecordRepository) SummarizePeriod(ctx context.Context, tenantID uuid.UUID, period payroll.Period) (*payroll.PeriodSummary, error) {
	var rows []statusTotals
	if err := r.scoped(ctx, tenantID).
		Select(periodTotalsColumns).
		Where("month = ? AND year = ?", period.Month, period.Year).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &payroll.PeriodSummary{
		Period:        period,
		CountByStatus: make(map[payroll.SalaryStatus]int64, len(rows)),
		TotalNetUSD:   decimal.Zero,
		TotalNetCDF:   decimal.Zero,
		TotalGross:    decimal.Zero,
	}
	for _, row := range rows {
		summary.Count += row.Count
		summary.CountByStatus[row.Status] = row.Count
		summary.TotalNetUSD = summary.TotalNetUSD.Add(row.TotalNetUSD)
		summary.TotalNetCDF = summary.TotalNetCDF.Add(row.TotalNetCDF)
		summary.TotalGross = summary.TotalGross.Add(row.TotalGross)
	}
	return summary, nil
}

// Save inserts a new record (version 1) or updates an existing one with an
// optimistic lock on the previous version. The domain bumps the version on
// every mutation.
func (r *GormSalaryRecordRepository) Save(ctx context.Context, record *payroll.SalaryRecord) error {
	model := models.SalaryRecordModelFromDomain(record)
	db := dbFromContext(ctx, r.db)

	if record.GetVersion() <= 1 {
		if err := db.Create(model).Error; err != nil {
			return r.translateWriteError(err, record)
		}
		return nil
	}

	expectedVersion := record.GetVersion() - 1
	result := db.Model(model).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Where("tenant_id = ? AND version = ?", record.TenantID, expectedVersion).
		Updates(model)
	if result.Error != nil {
		return r.translateWriteError(result.Error, record)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConflict, "Salary record has been modified concurrently")
	}
	return nil
}

// Delete persists the soft deletion stamped on the record by the domain
func (r *GormSalaryRecordRepository) Delete(ctx context.Context, record *payroll.SalaryRecord) error {
	if record.DeletedAt == nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Salary record must be marked deleted before it is removed")
	}
	result := dbFromContext(ctx, r.db).Model(&models.SalaryRecordModel{}).
		Scopes(tenant.Scope(record.TenantID)).
		Where("id = ? AND version = ?", record.ID, record.GetVersion()-1).
		Updates(map[string]any{
			"deleted_at": *record.DeletedAt,
			"updated_by": record.UpdatedBy,
			"updated_at": record.UpdatedAt,
			"version":    record.GetVersion(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, "Salary record not found")
	}
	return nil
}

func (r *GormSalaryRecordRepository) translateWriteError(err error, record *payroll.SalaryRecord) error {
	if isUniqueViolation(err) {
		return shared.WrapDomainError(shared.CodeConflict,
			fmt.Sprintf("A salary record already exists for this employee for %s", record.Period().String()), err)
	}
	return err
}

func (r *GormSalaryRecordRepository) applyFilter(query *gorm.DB, filter payroll.SalaryRecordFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	query = query.
		Order(SalaryRecordSortColumns.OrderClause(filter.OrderBy, filter.OrderDir, "created_at")).
		Order("id ASC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := filter.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
	}
	return query
}

func (r *GormSalaryRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter payroll.SalaryRecordFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(notes) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.PayrollPeriodID != nil {
		query = query.Where("payroll_period_id = ?", *filter.PayrollPeriodID)
	}
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency)
	}
	return query
}
