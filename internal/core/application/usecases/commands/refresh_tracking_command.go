package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var (
	ErrRefreshTrackingCommandIsNotConstructed = errors.New(
		"RefreshTrackingCommand must be created via NewRefreshTrackingCommand constructor",
	)
)

// RefreshTrackingCommand pulls the provider's tracking history for one order.
type RefreshTrackingCommand struct {
	orderID    kernel.UUID
	skipIfBusy bool

	guard guard.ConstructorGuard
}

// NewRefreshTrackingCommand validates the order id. With skipIfBusy the
// handler does not wait for an order another transition holds and fails
// with a conflict instead; the tracking poller uses it.
func NewRefreshTrackingCommand(orderID kernel.UUID, skipIfBusy bool) (RefreshTrackingCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RefreshTrackingCommand{}, err
	}

	return RefreshTrackingCommand{
		orderID:    orderID,
		skipIfBusy: skipIfBusy,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RefreshTrackingCommand) Validate() error {
	return c.guard.Validate(ErrRefreshTrackingCommandIsNotConstructed)
}

func (c RefreshTrackingCommand) OrderID() kernel.UUID { return c.orderID }
func (c RefreshTrackingCommand) SkipIfBusy() bool     { return c.skipIfBusy }
