package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/pkg/events"
	pkgkafka "github.com/Ban68/LePret-sub001/pkg/kafka"
)

// Producer is the subset of *pkgkafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaEventPublisher writes domain events to one topic as JSON envelopes,
// keyed by aggregate id so events of one request stay in order.
type KafkaEventPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given producer and topic.
func NewKafkaEventPublisher(producer Producer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises and sends domain events in one batch.
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}
		payload, err := env.Marshal()
		if err != nil {
			return fmt.Errorf("marshal envelope %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"company_id", evt.TenantID(),
			"topic", p.topic,
			"payload_size", len(payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
				"company_id": evt.TenantID(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
