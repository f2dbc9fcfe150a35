package commands

import (
	"context"
	"fmt"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// AssignCourierResult describes the outcome of a courier assignment.
type AssignCourierResult struct {
	Stage   order.Stage
	AWBCode string

	// Preferred is set when the courier was only recorded for the upcoming
	// AWB generation.
	Preferred bool

	// PickupReset is set when a scheduled pickup was cleared because it
	// belonged to the previous courier.
	PickupReset bool
}

// AssignCourierCommandHandler assigns couriers to shipments.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(lifecycle, gateway)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errs.KindOf(err) == errs.KindValidation:
//	    log.Println("parcel already picked up")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	case result.PickupReset:
//	    log.Println("pickup must be scheduled again")
//	}
type AssignCourierCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

// NewAssignCourierCommandHandler creates a handler for courier assignment operations.
func NewAssignCourierCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

// Handle processes the courier assignment command. From in_transit onwards
// the parcel is with the courier and the assignment is rejected.
func (h *AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) (AssignCourierResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignCourierResult{}, err
	}

	var result AssignCourierResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "assign_courier", false, func(o *order.Order) error {
		if err := o.CanAssignCourier(); err != nil {
			return err
		}

		if o.Stage() == order.StageShipmentCreated {
			if err := o.PreferCourier(cmd.CourierID()); err != nil {
				return err
			}
			if err := h.lifecycle.save(ctx, o, nil); err != nil {
				return err
			}
			result = AssignCourierResult{Stage: o.Stage(), Preferred: true}
			return nil
		}

		awb, err := h.gateway.AssignCourier(ctx, o.Shipment().ShipmentID(), cmd.CourierID())
		if err != nil {
			return err
		}

		assignment, err := courierFromAWB(awb, cmd.CourierID())
		if err != nil {
			return err
		}
		pickupReset, err := o.AssignCourier(assignment, awb.AWBCode)
		if err != nil {
			return err
		}
		if err = h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}
		if pickupReset {
			h.lifecycle.logger.InfoContext(ctx, "pickup reset after courier change",
				"order_id", o.ID().String(), "courier_id", cmd.CourierID())
		}

		result = AssignCourierResult{
			Stage:       o.Stage(),
			AWBCode:     o.Shipment().AWBCode(),
			PickupReset: pickupReset,
		}
		return nil
	})
	return result, err
}

// courierFromAWB uses the courier the provider reported, or a placeholder
// carrying only the requested id.
func courierFromAWB(awb ports.AWB, courierID int) (order.CourierAssignment, error) {
	if awb.Courier != nil {
		return *awb.Courier, nil
	}
	return order.NewCourierAssignment(courierID, fmt.Sprintf("courier %d", courierID), 0, kernel.ZeroMoney, kernel.ZeroMoney)
}
