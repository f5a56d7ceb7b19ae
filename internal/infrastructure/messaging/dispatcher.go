// Package messaging delivers committed domain events to the outside world.
package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
)

// DefaultDeliveryTimeout bounds one sink call.
const DefaultDeliveryTimeout = 5 * time.Second

// Dispatcher is the asynchronous FIFO in front of the event sink. Publish
// never blocks: it queues the events of one commit as a batch, or drops them
// with a WARN log when the queue is full. A single goroutine (Run) hands the
// batches to the sink in the order they were queued.
type Dispatcher struct {
	sink    port.EventPublisher
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan []event.DomainEvent
	done   chan struct{}
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDeliveryTimeout overrides DefaultDeliveryTimeout.
func WithDeliveryTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithMetrics counts dropped events.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(disp *Dispatcher) { disp.metrics = m }
}

// NewDispatcher creates a dispatcher queueing at most buffer batches.
func NewDispatcher(sink port.EventPublisher, buffer int, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		timeout: DefaultDeliveryTimeout,
		queue:   make(chan []event.DomainEvent, buffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish queues evts for delivery. It always returns nil.
func (d *Dispatcher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}
	batch := append([]event.DomainEvent(nil), evts...)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ctx, batch, "dispatcher closed")
		return nil
	}
	select {
	case d.queue <- batch:
	default:
		d.drop(ctx, batch, "dispatch queue full")
	}
	return nil
}

// Run delivers queued batches until Close is called and the queue is
// drained. Sink failures are logged at WARN and not retried.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	base := context.WithoutCancel(ctx)
	for batch := range d.queue {
		d.deliver(base, batch)
	}
}

// Close stops accepting events and waits until Run has delivered what was
// already queued, or until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(base context.Context, batch []event.DomainEvent) {
	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()

	if err := d.sink.Publish(ctx, batch...); err != nil {
		for _, evt := range batch {
			d.logger.WarnContext(ctx, "event delivery failed",
				"event_type", evt.EventType(),
				"aggregate_id", evt.AggregateID(),
				"company_id", evt.TenantID(),
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) drop(ctx context.Context, batch []event.DomainEvent, reason string) {
	for _, evt := range batch {
		d.logger.WarnContext(ctx, "event dropped",
			"reason", reason,
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"company_id", evt.TenantID(),
		)
	}
	d.metrics.notificationsDropped(ctx, len(batch))
}
