package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var (
	ErrRegisterOrderCommandIsNotConstructed = errors.New(
		"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
	)
)

// RegisterOrderCommand registers an accepted order with the logistics provider.
type RegisterOrderCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand validates the order id.
func NewRegisterOrderCommand(orderID kernel.UUID) (RegisterOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RegisterOrderCommand{}, err
	}

	return RegisterOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c RegisterOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
