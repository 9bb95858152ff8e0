package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedEmployee(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string, status payroll.EmployeeStatus) models.EmployeeModel {
	t.Helper()
	m := models.EmployeeModel{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		TenantID:    tenantID,
		Code:        code,
		Name:        "Employee " + code,
		BasicSalary: dec("450"),
		Status:      status,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func TestGormEmployeeReader(t *testing.T) {
	db := setupPayrollTestDB(t)
	reader := NewGormEmployeeReader(db)
	ctx := context.Background()
	tenantID := uuid.New()

	e2 := seedEmployee(t, db, tenantID, "EMP002", payroll.EmployeeStatusActive)
	e1 := seedEmployee(t, db, tenantID, "EMP001", payroll.EmployeeStatusActive)
	inactive := seedEmployee(t, db, tenantID, "EMP003", payroll.EmployeeStatusInactive)
	foreign := seedEmployee(t, db, uuid.New(), "EMP001", payroll.EmployeeStatusActive)

	t.Run("FindByIDForTenant", func(t *testing.T) {
		found, err := reader.FindByIDForTenant(ctx, tenantID, e1.ID)
		require.NoError(t, err)
		assert.Equal(t, "EMP001", found.Code)
		assert.Equal(t, "450.00", found.BasicSalary.StringFixed(2))

		_, err = reader.FindByIDForTenant(ctx, tenantID, foreign.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByIDsForTenant skips unknown and foreign ids", func(t *testing.T) {
		found, err := reader.FindByIDsForTenant(ctx, tenantID, []uuid.UUID{e1.ID, inactive.ID, foreign.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.Equal(t, "EMP003", found[inactive.ID].Code)

		empty, err := reader.FindByIDsForTenant(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("FindActiveForTenant orders by code", func(t *testing.T) {
		active, err := reader.FindActiveForTenant(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, e1.ID, active[0].ID)
		assert.Equal(t, e2.ID, active[1].ID)
	})
}

func TestGormCompensationReader(t *testing.T) {
	db := setupPayrollTestDB(t)
	reader := NewGormCompensationReader(db)
	ctx := context.Background()
	tenantID := uuid.New()
	employeeID := uuid.New()

	components := []models.CompensationComponentModel{
		{Kind: payroll.ComponentDeduction, Name: "Pension", CalculationType: payroll.CalculationPercentage, Value: dec("5"), IsActive: true},
		{Kind: payroll.ComponentAllowance, Name: "Transport", CalculationType: payroll.CalculationFixed, Value: dec("50"), IsActive: true},
		{Kind: payroll.ComponentAllowance, Name: "Housing", CalculationType: payroll.CalculationFixed, Value: dec("80"), IsActive: false},
	}
	for i := range components {
		components[i].ID = uuid.New()
		components[i].TenantID = tenantID
		components[i].EmployeeID = employeeID
	}
	require.NoError(t, db.Create(&components).Error)
	// gorm skips zero-valued fields that carry a default, so deactivate explicitly
	require.NoError(t, db.Model(&models.CompensationComponentModel{}).
		Where("id = ?", components[2].ID).Update("is_active", false).Error)

	found, err := reader.FindActiveForEmployee(ctx, tenantID, employeeID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Transport", found[0].Name)
	assert.Equal(t, payroll.ComponentDeduction, found[1].Kind)

	none, err := reader.FindActiveForEmployee(ctx, uuid.New(), employeeID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
