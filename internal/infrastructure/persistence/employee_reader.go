package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/infrastructure/persistence/models"
	"github.com/repairshop/erp/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormEmployeeReader implements payroll.EmployeeReader over the HR employees table
type GormEmployeeReader struct {
	db *gorm.DB
}

// NewGormEmployeeReader creates a new GormEmployeeReader
func NewGormEmployeeReader(db *gorm.DB) *GormEmployeeReader {
	return &GormEmployeeReader{db: db}
}

// FindByIDForTenant finds an employee by ID for a specific tenant
func (r *GormEmployeeReader) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.Employee, error) {
	var model models.EmployeeModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Employee not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant loads the employees with the given IDs, keyed by ID.
// Unknown IDs are absent from the result.
func (r *GormEmployeeReader) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]payroll.Employee, error) {
	result := make(map[uuid.UUID]payroll.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var employeeModels []models.EmployeeModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenant.Scope(tenantID)).
		Where("id IN ?", ids).
		Find(&employeeModels).Error; err != nil {
		return nil, err
	}
	for i := range employeeModels {
		result[employeeModels[i].ID] = *employeeModels[i].ToDomain()
	}
	return result, nil
}

// FindActiveForTenant lists the active employees of a tenant ordered by code
func (r *GormEmployeeReader) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]payroll.Employee, error) {
	var employeeModels []models.EmployeeModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenant.Scope(tenantID)).
		Where("status = ?", payroll.EmployeeStatusActive).
		Order("code ASC").
		Find(&employeeModels).Error; err != nil {
		return nil, err
	}
	employees := make([]payroll.Employee, len(employeeModels))
	for i := range employeeModels {
		employees[i] = *employeeModels[i].ToDomain()
	}
	return employees, nil
}
