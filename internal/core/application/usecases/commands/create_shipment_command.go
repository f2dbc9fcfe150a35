package commands

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"
)

var (
	ErrCreateShipmentCommandIsNotConstructed = errors.New(
		"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
	)
)

// CreateShipmentCommand creates the provider shipment for an order.
type CreateShipmentCommand struct {
	orderID        kernel.UUID
	pickupLocation string

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand validates the order id. An empty pickup location
// selects order.DefaultPickupLocation.
func NewCreateShipmentCommand(orderID kernel.UUID, pickupLocation string) (CreateShipmentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreateShipmentCommand{}, err
	}

	pickupLocation = strings.TrimSpace(pickupLocation)
	if pickupLocation == "" {
		pickupLocation = order.DefaultPickupLocation
	}

	return CreateShipmentCommand{
		orderID:        orderID,
		pickupLocation: pickupLocation,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

func (c CreateShipmentCommand) OrderID() kernel.UUID   { return c.orderID }
func (c CreateShipmentCommand) PickupLocation() string { return c.pickupLocation }
