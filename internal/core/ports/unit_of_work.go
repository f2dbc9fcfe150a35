package ports

import (
	"context"

	"shipping/internal/core/domain/model/order"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Repositories run inside the transaction after Begin and on the plain
// connection before it.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	TrackingEventRepository() TrackingEventRepository
	ReconciliationRepository() ReconciliationRepository

	// TrackedOrders returns the orders added or updated through this unit of
	// work, so their stage changes can be published after Commit.
	TrackedOrders() []*order.Order
}
