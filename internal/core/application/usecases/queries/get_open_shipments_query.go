// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var (
	ErrGetOpenShipmentsQueryIsNotConstructed = errors.New(
		"GetOpenShipmentsQuery must be created via NewGetOpenShipmentsQuery constructor",
	)
)

// GetOpenShipmentsQuery lists shipments the provider may still report
// movement for: an AWB is issued and the stage is not closed. The least
// recently synced shipments come first.
//
// Example:
//
//	query, err := NewGetOpenShipmentsQuery(200)
//	if err != nil {
//	    return err
//	}
//	handler := NewGetOpenShipmentsQueryHandler(db)
//
//	shipments, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list open shipments: %w", err)
//	}
//	for _, s := range shipments {
//	    fmt.Printf("Order %s AWB %s (%s)\n", s.OrderID, s.AWBCode, s.Stage)
//	}
type GetOpenShipmentsQuery struct {
	limit int
	guard guard.ConstructorGuard
}

// NewGetOpenShipmentsQuery creates a query returning at most limit shipments.
// A zero limit returns all of them.
func NewGetOpenShipmentsQuery(limit int) (GetOpenShipmentsQuery, error) {
	if limit < 0 {
		return GetOpenShipmentsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, "+inf")
	}
	return GetOpenShipmentsQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOpenShipmentsQueryIsNotConstructed if validation fails.
func (q GetOpenShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenShipmentsQueryIsNotConstructed)
}

func (q GetOpenShipmentsQuery) Limit() int {
	return q.limit
}

// GetOpenShipmentsQueryResponse is one shipment awaiting tracking updates.
// LastTrackingSyncAt is zero when the shipment was never synced.
type GetOpenShipmentsQueryResponse struct {
	OrderID            kernel.UUID
	AWBCode            string
	Stage              order.Stage
	LastTrackingSyncAt time.Time
}
