// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, per-order locking,
// the provider call, the aggregate transition, persistence and event publishing.
package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// TrackingRepoFactory provides access to the tracking history repository.
	TrackingRepoFactory interface {
		TrackingEventRepository() ports.TrackingEventRepository
	}

	// ReconciliationRepoFactory provides access to the reconciliation issue repository.
	ReconciliationRepoFactory interface {
		ReconciliationRepository() ports.ReconciliationRepository
	}

	// AggregateTracker reports the orders touched inside a unit of work.
	AggregateTracker interface {
		TrackedOrders() []*order.Order
	}

	// UoW manages transactions across orders, their tracking history and
	// reconciliation issues.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   err = uow.OrderRepository().Update(ctx, o)
	//   err = uow.TrackingEventRepository().Append(ctx, o.ID(), events)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		TrackingRepoFactory
		ReconciliationRepoFactory
		AggregateTracker
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)
