package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var (
	ErrGenerateAWBCommandIsNotConstructed = errors.New(
		"GenerateAWBCommand must be created via NewGenerateAWBCommand constructor",
	)
)

// GenerateAWBCommand issues the airway bill for a created shipment.
type GenerateAWBCommand struct {
	orderID   kernel.UUID
	courierID int

	guard guard.ConstructorGuard
}

// NewGenerateAWBCommand validates the input. courierID 0 means no explicit
// courier: the preferred courier, auto-selection or the provider decides.
func NewGenerateAWBCommand(orderID kernel.UUID, courierID int) (GenerateAWBCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if courierID < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("courier_id", courierID, 0, "+inf"))
	}
	if err := errors.Join(errList...); err != nil {
		return GenerateAWBCommand{}, err
	}

	return GenerateAWBCommand{
		orderID:   orderID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c GenerateAWBCommand) Validate() error {
	return c.guard.Validate(ErrGenerateAWBCommandIsNotConstructed)
}

func (c GenerateAWBCommand) OrderID() kernel.UUID { return c.orderID }
func (c GenerateAWBCommand) CourierID() int       { return c.courierID }
