package commands

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"
)

var (
	ErrSchedulePickupCommandIsNotConstructed = errors.New(
		"SchedulePickupCommand must be created via NewSchedulePickupCommand constructor",
	)
)

// SchedulePickupCommand books the courier collection for a day.
type SchedulePickupCommand struct {
	orderID kernel.UUID
	date    time.Time

	guard guard.ConstructorGuard
}

// NewSchedulePickupCommand validates the order id. The date is reduced to its
// UTC calendar day; a zero date means today.
func NewSchedulePickupCommand(orderID kernel.UUID, date time.Time) (SchedulePickupCommand, error) {
	if err := orderID.Validate(); err != nil {
		return SchedulePickupCommand{}, err
	}

	if !date.IsZero() {
		date = order.PickupDay(date)
	}

	return SchedulePickupCommand{
		orderID: orderID,
		date:    date,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SchedulePickupCommand) Validate() error {
	return c.guard.Validate(ErrSchedulePickupCommandIsNotConstructed)
}

func (c SchedulePickupCommand) OrderID() kernel.UUID { return c.orderID }

// Date returns the requested day, zero for today.
func (c SchedulePickupCommand) Date() time.Time { return c.date }
