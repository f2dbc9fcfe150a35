package commands

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// SchedulePickupResult is the booked pickup.
type SchedulePickupResult struct {
	Token string
	Date  time.Time
	Stage order.Stage

	// AlreadyScheduled is set when the order had a pickup for the same day
	// and no remote call was made.
	AlreadyScheduled bool
}

// SchedulePickupCommandHandler books pickups. Scheduling the same day twice
// returns the original token; a different day reschedules.
type SchedulePickupCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewSchedulePickupCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) SchedulePickupCommandHandler {
	return SchedulePickupCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

func (h *SchedulePickupCommandHandler) Handle(ctx context.Context, cmd SchedulePickupCommand) (SchedulePickupResult, error) {
	if err := cmd.Validate(); err != nil {
		return SchedulePickupResult{}, err
	}

	var result SchedulePickupResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "schedule_pickup", false, func(o *order.Order) error {
		if err := o.CanSchedulePickup(); err != nil {
			return err
		}

		date := cmd.Date()
		if date.IsZero() {
			date = order.PickupDay(h.lifecycle.clock.Now())
		}

		if existing, ok := o.ScheduledPickupOn(date); ok {
			result = SchedulePickupResult{
				Token:            existing.Token(),
				Date:             existing.Date(),
				Stage:            o.Stage(),
				AlreadyScheduled: true,
			}
			return nil
		}

		confirmation, err := h.gateway.SchedulePickup(ctx, o.Shipment().ShipmentID(), date)
		if err != nil {
			return err
		}
		if !confirmation.Date.IsZero() {
			date = confirmation.Date
		}

		pickup, err := order.NewPickup(date, confirmation.Token)
		if err != nil {
			return err
		}
		if err = o.SchedulePickup(pickup); err != nil {
			return err
		}
		if err = h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}

		result = SchedulePickupResult{
			Token: pickup.Token(),
			Date:  pickup.Date(),
			Stage: o.Stage(),
		}
		return nil
	})
	return result, err
}
