package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand picks the courier for a shipment. This is the manual
// counterpart of the courier selector: before the AWB exists the choice is
// stored as the preferred courier, afterwards the provider reassigns.
//
// Example:
//
//	cmd, err := NewAssignCourierCommand(orderID, 24)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type AssignCourierCommand struct {
	orderID   kernel.UUID
	courierID int

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand validates the order and courier ids.
func NewAssignCourierCommand(orderID kernel.UUID, courierID int) (AssignCourierCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if courierID <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("courier_id", courierID, 1, "+inf"))
	}
	if err := errors.Join(errList...); err != nil {
		return AssignCourierCommand{}, err
	}

	return AssignCourierCommand{
		orderID:   orderID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignCourierCommandIsNotConstructed if validation fails.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(
		ErrAssignCourierCommandIsNotConstructed,
	)
}

func (c AssignCourierCommand) OrderID() kernel.UUID { return c.orderID }
func (c AssignCourierCommand) CourierID() int       { return c.courierID }
