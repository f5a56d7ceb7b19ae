package events

import (
	"encoding/json"
	"testing"
	"time"
)

type requestFunded struct {
	BaseEvent
	PaymentID string `json:"payment_id"`
	Amount    string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("COT", -5*3600))
	event := NewBaseEvent("factoring.request.status_changed", "req-123", "FundingRequest", "company-456", at)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "factoring.request.status_changed" {
		t.Errorf("unexpected event type %q", event.EventType())
	}
	if event.AggregateID() != "req-123" {
		t.Errorf("expected aggregate ID req-123, got %q", event.AggregateID())
	}
	if event.AggregateType() != "FundingRequest" {
		t.Errorf("expected aggregate type FundingRequest, got %q", event.AggregateType())
	}
	if event.TenantID() != "company-456" {
		t.Errorf("expected tenant ID company-456, got %q", event.TenantID())
	}
	if !event.OccurredAt().Equal(at) || event.OccurredAt().Location() != time.UTC {
		t.Errorf("expected occurredAt %v in UTC, got %v", at, event.OccurredAt())
	}
}

func TestNewBaseEventGeneratesDistinctIDs(t *testing.T) {
	now := time.Now()
	a := NewBaseEvent("A", "agg", "Aggregate", "", now)
	b := NewBaseEvent("A", "agg", "Aggregate", "", now)
	if a.EventID() == b.EventID() {
		t.Error("expected distinct event IDs")
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewEnvelope(t *testing.T) {
	event := requestFunded{
		BaseEvent: NewBaseEvent("factoring.payment.disbursement_requested", "pay-1", "Payment", "company-1", time.Now()),
		PaymentID: "pay-1",
		Amount:    "1000000",
	}

	env, err := NewEnvelope(event)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if env.EventID != event.EventID() {
		t.Errorf("expected envelope ID %q, got %q", event.EventID(), env.EventID)
	}
	if env.AggregateID != "pay-1" || env.AggregateType != "Payment" || env.TenantID != "company-1" {
		t.Errorf("unexpected envelope metadata: %+v", env)
	}

	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if data["payment_id"] != "pay-1" || data["amount"] != "1000000" {
		t.Errorf("unexpected payload: %v", data)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	event := NewBaseEvent("Event1", "agg", "Aggregate", "tenant", time.Now())
	env, err := NewEnvelope(event)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	decoded, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if decoded.EventID != env.EventID || decoded.EventType != "Event1" {
		t.Errorf("decoded envelope mismatch: %+v", decoded)
	}
	if !decoded.OccurredAt.Equal(env.OccurredAt) {
		t.Errorf("expected occurredAt %v, got %v", env.OccurredAt, decoded.OccurredAt)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected error decoding garbage")
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	now := time.Now()

	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", "", now))
	collector.Record(NewBaseEvent("Event2", "agg", "Aggregate", "", now), NewBaseEvent("Event3", "agg", "Aggregate", "", now))

	events := collector.Events()
	if len(events) != 3 || collector.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"Event1", "Event2", "Event3"} {
		if events[i].EventType() != want {
			t.Errorf("event %d: expected %q, got %q", i, want, events[i].EventType())
		}
	}
}

func TestEventCollectorDrain(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", "", time.Now()))

	drained := collector.Drain()
	if len(drained) != 1 {
		t.Fatalf("expected Drain to return 1 event, got %d", len(drained))
	}
	if collector.Len() != 0 {
		t.Errorf("expected empty collector after Drain, got %d", collector.Len())
	}
	if again := collector.Drain(); again != nil {
		t.Errorf("expected nil from Drain on empty collector, got %v", again)
	}
}
