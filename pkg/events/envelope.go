package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire representation of a domain event: the metadata from
// BaseEvent plus the event's own JSON payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	TenantID      string          `json:"tenant_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// NewEnvelope wraps event, marshalling the concrete type as the payload.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	return Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		TenantID:      event.TenantID(),
		OccurredAt:    event.OccurredAt(),
		Data:          data,
	}, nil
}

// Marshal encodes the envelope as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a JSON-encoded envelope.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
