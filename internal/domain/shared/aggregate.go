package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity holds the identity and timestamps every persisted entity has.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity generates an ID and stamps both timestamps with now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds the optimistic-locking version and the events
// raised since the aggregate was loaded.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// GetVersion returns the version the aggregate was loaded (or last saved) at
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// AddDomainEvent queues an event for publication after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// TenantAggregateRoot is an aggregate owned by one tenant. CreatedBy and
// UpdatedBy are always the explicit principal of the mutating call.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
	UpdatedBy *uuid.UUID
}

// NewTenantAggregateRootWithCreator starts a version 1 aggregate for tenantID
func NewTenantAggregateRootWithCreator(tenantID, createdBy uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1},
		TenantID:          tenantID,
		CreatedBy:         &createdBy,
		UpdatedBy:         &createdBy,
	}
}

// Touch records principal as the last writer and bumps the version
func (t *TenantAggregateRoot) Touch(principal uuid.UUID) {
	t.UpdatedBy = &principal
	t.UpdatedAt = time.Now()
	t.Version++
}
