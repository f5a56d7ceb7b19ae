package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	TenantID() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. Concrete events
// embed it and carry their payload in exported, JSON-tagged fields.
type BaseEvent struct {
	id            string
	eventType     string
	aggregateID   string
	aggregateType string
	tenantID      string
	occurredAt    time.Time
}

// NewBaseEvent creates a BaseEvent with a generated id. occurredAt is
// normalised to UTC.
func NewBaseEvent(eventType, aggregateID, aggregateType, tenantID string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:            uuid.NewString(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		tenantID:      tenantID,
		occurredAt:    occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.id }
func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) AggregateType() string { return e.aggregateType }
func (e BaseEvent) TenantID() string      { return e.tenantID }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
