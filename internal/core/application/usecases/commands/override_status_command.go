package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"
)

var (
	ErrOverrideStatusCommandIsNotConstructed = errors.New(
		"OverrideStatusCommand must be created via NewOverrideStatusCommand constructor",
	)
)

// OverrideStatusCommand sets an order's business status directly, leaving
// the shipment stage alone.
type OverrideStatusCommand struct {
	orderID kernel.UUID
	status  order.Status

	guard guard.ConstructorGuard
}

func NewOverrideStatusCommand(orderID kernel.UUID, status order.Status) (OverrideStatusCommand, error) {
	if err := errors.Join(orderID.Validate(), status.Validate()); err != nil {
		return OverrideStatusCommand{}, err
	}

	return OverrideStatusCommand{
		orderID: orderID,
		status:  status,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c OverrideStatusCommand) Validate() error {
	return c.guard.Validate(ErrOverrideStatusCommandIsNotConstructed)
}

func (c OverrideStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c OverrideStatusCommand) Status() order.Status { return c.status }
