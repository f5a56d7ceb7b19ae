package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// reader is the subset of *kafkago.Reader the consumer loop needs.
type reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer wraps a kafka-go reader for consuming messages with at-least-once
// semantics: offsets are committed only after the handler succeeds.
type Consumer struct {
	reader  reader
	topic   string
	group   string
	handler Handler
	logger  *slog.Logger
}

// NewConsumer creates a new Consumer for the given topic with the provided handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
	}

	if cfg.TLS || cfg.SASLEnabled {
		mech, err := cfg.saslMechanism()
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		readerCfg.Dialer = &kafkago.Dialer{
			ClientID:      cfg.ClientID,
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mech,
		}
	}

	return newConsumer(kafkago.NewReader(readerCfg), topic, cfg.ConsumerGroup, handler, logger), nil
}

func newConsumer(r reader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		topic:   topic,
		group:   group,
		handler: handler,
		logger:  logger,
	}
}

// Start begins consuming messages. Blocks until the context is canceled.
// A message whose handler fails is logged and left uncommitted.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping due to context cancellation", "topic", c.topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handler(ctx, fromKafkaMessage(m)); err != nil {
			c.logger.Error("handler error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
