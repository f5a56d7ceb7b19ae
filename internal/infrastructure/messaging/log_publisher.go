package messaging

import (
	"context"
	"log/slog"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
)

// LogEventPublisher is the sink used when no broker is configured. It writes
// one INFO line per event.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	for _, evt := range evts {
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID(),
			"aggregate_id", evt.AggregateID(),
			"company_id", evt.TenantID(),
		)
	}
	return nil
}
