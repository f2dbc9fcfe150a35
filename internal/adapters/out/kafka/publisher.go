// Package kafka publishes committed shipment stage changes.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"shipping/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "shipping.shipment-events"

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by order id so a consumer
// sees an order's changes in commit order.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher connects to brokers lazily; the first write dials.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{writer: w, logger: logger.With("component", "kafka_publisher")}
}

func (p *Publisher) Publish(ctx context.Context, events ...ports.ShipmentEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal shipment event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.OrderID),
			Value: payload,
			Time:  ev.OccurredAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish shipment events: %w", err)
	}
	p.logger.DebugContext(ctx, "Shipment events published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them. It is used when no
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "event_log")}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...ports.ShipmentEvent) error {
	for _, ev := range events {
		p.logger.InfoContext(ctx, "Shipment stage changed",
			"order_id", ev.OrderID,
			"from_stage", ev.FromStage,
			"to_stage", ev.ToStage,
			"status", ev.Status,
			"occurred_at", ev.OccurredAt,
		)
	}
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
