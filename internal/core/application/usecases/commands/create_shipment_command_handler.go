package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// CreateShipmentResult describes the created shipment.
type CreateShipmentResult struct {
	ProviderOrderID string
	ShipmentID      string
	Stage           order.Stage
}

// CreateShipmentCommandHandler creates the provider shipment. An accepted
// order is registered first, inside the same locked transition.
//
// CreateShipment is not idempotent on the provider side, so an ambiguous
// failure is resolved by looking the order up before the call is repeated.
type CreateShipmentCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewCreateShipmentCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

func (h *CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (CreateShipmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateShipmentResult{}, err
	}

	var result CreateShipmentResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "create_shipment", false, func(o *order.Order) error {
		if err := o.CanCreateShipment(); err != nil {
			return err
		}

		if o.Stage() == order.StageAccepted {
			providerOrderID, err := registerWithProvider(ctx, h.gateway, h.lifecycle, o)
			if err != nil {
				return err
			}
			if err = o.Register(providerOrderID); err != nil {
				return err
			}
			if err = h.lifecycle.save(ctx, o, nil); err != nil {
				return err
			}
		}

		shipmentID, err := h.createRemote(ctx, o, cmd.PickupLocation())
		if err != nil {
			return err
		}
		if err = o.AttachShipment(shipmentID, cmd.PickupLocation()); err != nil {
			return err
		}
		if err = h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}

		result = CreateShipmentResult{
			ProviderOrderID: o.Shipment().ProviderOrderID(),
			ShipmentID:      shipmentID,
			Stage:           o.Stage(),
		}
		return nil
	})
	return result, err
}

func (h *CreateShipmentCommandHandler) createRemote(ctx context.Context, o *order.Order, pickupLocation string) (string, error) {
	req := ports.CreateShipmentRequest{
		OrderID:         o.ID(),
		ProviderOrderID: o.Shipment().ProviderOrderID(),
		PickupLocation:  pickupLocation,
		Parcel:          o.Parcel(),
	}

	created, err := h.gateway.CreateShipment(ctx, req)
	if err == nil {
		return created.ShipmentID, nil
	}
	if !isAmbiguous(err) {
		return "", err
	}

	existing, findErr := h.gateway.FindOrder(ctx, o.ID())
	if findErr != nil {
		h.lifecycle.logger.WarnContext(ctx, "shipment lookup after ambiguous failure failed",
			"order_id", o.ID().String(), "error", findErr)
		return "", err
	}
	if existing.ShipmentID != "" {
		h.lifecycle.logger.InfoContext(ctx, "adopted shipment created by an ambiguous call",
			"order_id", o.ID().String(), "shipment_id", existing.ShipmentID)
		return existing.ShipmentID, nil
	}

	created, err = h.gateway.CreateShipment(ctx, req)
	if err != nil {
		return "", err
	}
	return created.ShipmentID, nil
}
