// Package tenant provides multi-tenant database scoping for GORM.
//
// Every payroll repository query goes through Scope so that a tenant can
// never read or modify another tenant's rows:
//
//	db.Scopes(tenant.Scope(tenantID)).Find(&records)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts the query to rows owned by tenantID. The nil UUID adds
// ErrTenantIDRequired to the statement instead of running unscoped.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return ScopeColumn("tenant_id", tenantID)
}

// ScopeColumn is Scope for tables whose tenant column is qualified or renamed
func ScopeColumn(column string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(column+" = ?", tenantID)
	}
}
