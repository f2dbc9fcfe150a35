// Package ports defines the contracts between the application core and its
// adapters: persistence, the logistics provider, event publishing and locking.
package ports

import (
	"context"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// An order and its shipment are stored and loaded together.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order and upserts its shipment.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its shipment.
	// Returns an errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// TrackingEventRepository stores the append-only tracking history of orders.
type TrackingEventRepository interface {
	// Append stores events for the order. Events already stored (same time
	// and status) are ignored.
	Append(ctx context.Context, orderID kernel.UUID, events []order.TrackingEvent) error

	// List returns the order's events, oldest first.
	List(ctx context.Context, orderID kernel.UUID) ([]order.TrackingEvent, error)
}

// ReconciliationRepository stores issues that need manual review.
type ReconciliationRepository interface {
	Add(ctx context.Context, issue *order.ReconciliationIssue) error
	Update(ctx context.Context, issue *order.ReconciliationIssue) error

	// Get returns an errs.ObjectNotFoundError when the issue does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.ReconciliationIssue, error)
}
