package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/infrastructure/persistence/models"
	"github.com/repairshop/erp/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCompensationReader implements payroll.CompensationReader
type GormCompensationReader struct {
	db *gorm.DB
}

// NewGormCompensationReader creates a new GormCompensationReader
func NewGormCompensationReader(db *gorm.DB) *GormCompensationReader {
	return &GormCompensationReader{db: db}
}

// FindActiveForEmployee loads the active allowance and deduction templates of an employee
func (r *GormCompensationReader) FindActiveForEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]payroll.CompensationComponent, error) {
	var componentModels []models.CompensationComponentModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenant.Scope(tenantID)).
		Where("employee_id = ? AND is_active = ?", employeeID, true).
		Order("kind ASC, name ASC").
		Find(&componentModels).Error; err != nil {
		return nil, err
	}
	components := make([]payroll.CompensationComponent, len(componentModels))
	for i := range componentModels {
		components[i] = componentModels[i].ToDomain()
	}
	return components, nil
}
