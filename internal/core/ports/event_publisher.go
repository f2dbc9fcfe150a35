package ports

import (
	"context"
	"time"
)

// ShipmentEvent is published for every committed stage change.
type ShipmentEvent struct {
	OrderID    string    `json:"order_id"`
	FromStage  string    `json:"from_stage"`
	ToStage    string    `json:"to_stage"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers shipment events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...ShipmentEvent) error
}
