package messaging

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
)

// MeterName is the instrumentation scope of the engine's counters.
const MeterName = "factoring"

// Metrics holds the notification counters.
type Metrics struct {
	events  metric.Int64Counter
	dropped metric.Int64Counter
}

// NewMetrics registers the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eventsTotal, err := meter.Int64Counter("factoring_events_total",
		metric.WithDescription("Domain events handed to the sink, by event type."),
	)
	if err != nil {
		return nil, fmt.Errorf("messaging: events counter: %w", err)
	}
	dropped, err := meter.Int64Counter("factoring_notifications_dropped_total",
		metric.WithDescription("Domain events dropped because the dispatch queue was full."),
	)
	if err != nil {
		return nil, fmt.Errorf("messaging: dropped counter: %w", err)
	}
	return &Metrics{events: eventsTotal, dropped: dropped}, nil
}

func (m *Metrics) eventPublished(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (m *Metrics) notificationsDropped(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.Add(ctx, int64(n))
}

// InstrumentedPublisher counts every event its sink accepted.
type InstrumentedPublisher struct {
	next    port.EventPublisher
	metrics *Metrics
}

// NewInstrumentedPublisher wraps next. A nil metrics records nothing.
func NewInstrumentedPublisher(next port.EventPublisher, metrics *Metrics) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, metrics: metrics}
}

// Publish forwards evts to the sink and counts them by event type once the
// sink has accepted them.
func (p *InstrumentedPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if err := p.next.Publish(ctx, evts...); err != nil {
		return err
	}
	for _, evt := range evts {
		p.metrics.eventPublished(ctx, evt.EventType())
	}
	return nil
}
