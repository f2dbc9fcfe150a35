package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var (
	ErrFetchLabelCommandIsNotConstructed = errors.New(
		"FetchLabelCommand must be created via NewFetchLabelCommand constructor",
	)
)

// FetchLabelCommand retrieves the printable shipping label of an order with an AWB.
type FetchLabelCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewFetchLabelCommand validates the order id.
func NewFetchLabelCommand(orderID kernel.UUID) (FetchLabelCommand, error) {
	if err := orderID.Validate(); err != nil {
		return FetchLabelCommand{}, err
	}

	return FetchLabelCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c FetchLabelCommand) Validate() error {
	return c.guard.Validate(ErrFetchLabelCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c FetchLabelCommand) OrderID() kernel.UUID {
	return c.orderID
}
