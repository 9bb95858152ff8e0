package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate and published after commit.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent carries the event metadata. Concrete events embed it and add
// their own payload fields, which serialise next to these.
type BaseDomainEvent struct {
	Meta EventMeta `json:"meta"`
}

// EventMeta is the metadata part of every event
type EventMeta struct {
	ID            uuid.UUID `json:"event_id"`
	Type          string    `json:"event_type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Tenant        uuid.UUID `json:"tenant_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.Meta.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Meta.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Meta.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Meta.Aggregate }
func (e *BaseDomainEvent) AggregateType() string  { return e.Meta.AggregateKind }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.Meta.Tenant }

// NewBaseDomainEvent stamps a new event ID and the current UTC time
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{Meta: EventMeta{
		ID:            uuid.New(),
		Type:          eventType,
		At:            time.Now().UTC(),
		Aggregate:     aggID,
		AggregateKind: aggType,
		Tenant:        tenantID,
	}}
}

// EventHandler reacts to published events.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all.
	EventTypes() []string
}

// EventPublisher is what the application layer publishes through.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher with subscriptions and a lifecycle.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
