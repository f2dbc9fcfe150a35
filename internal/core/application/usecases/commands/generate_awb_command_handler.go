package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"
)

// GenerateAWBResult describes the issued airway bill.
type GenerateAWBResult struct {
	AWBCode string
	Stage   order.Stage

	// Courier is nil when the provider did not report one.
	Courier *order.CourierAssignment
}

// GenerateAWBCommandHandler issues airway bills.
//
// The courier requested from the provider is, in order: the command's courier,
// the order's preferred courier, the best ranked serviceable courier when
// auto-selection is on, and otherwise none so the provider assigns one.
type GenerateAWBCommandHandler struct {
	lifecycle  *Lifecycle
	gateway    ports.LogisticsGateway
	selector   services.CourierSelector
	autoSelect bool
}

func NewGenerateAWBCommandHandler(
	lifecycle *Lifecycle,
	gateway ports.LogisticsGateway,
	selector services.CourierSelector,
	autoSelect bool,
) GenerateAWBCommandHandler {
	return GenerateAWBCommandHandler{
		lifecycle:  lifecycle,
		gateway:    gateway,
		selector:   selector,
		autoSelect: autoSelect,
	}
}

// Handle generates the AWB. Insufficient wallet balance surfaces as a
// permanent provider error and leaves the order at shipment_created.
func (h *GenerateAWBCommandHandler) Handle(ctx context.Context, cmd GenerateAWBCommand) (GenerateAWBResult, error) {
	if err := cmd.Validate(); err != nil {
		return GenerateAWBResult{}, err
	}

	var result GenerateAWBResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "generate_awb", false, func(o *order.Order) error {
		if err := o.CanGenerateAWB(); err != nil {
			return err
		}

		courierID := h.chooseCourier(ctx, o, cmd.CourierID())
		awb, err := h.assignRemote(ctx, o, courierID)
		if err != nil {
			return err
		}
		if err = o.AssignAWB(awb.AWBCode, awb.Courier); err != nil {
			return err
		}
		if err = h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}

		result = GenerateAWBResult{
			AWBCode: awb.AWBCode,
			Stage:   o.Stage(),
			Courier: o.Shipment().Courier(),
		}
		return nil
	})
	return result, err
}

// assignRemote adopts an AWB the provider already issued when the call was
// ambiguous or rejected as already assigned.
func (h *GenerateAWBCommandHandler) assignRemote(ctx context.Context, o *order.Order, courierID int) (ports.AWB, error) {
	awb, err := h.gateway.GenerateAWB(ctx, o.Shipment().ShipmentID(), courierID)
	if err == nil {
		return awb, nil
	}
	if !isAmbiguous(err) && !errs.HasCode(err, errs.ProviderCodeAlreadyAssigned) {
		return ports.AWB{}, err
	}

	existing, findErr := h.gateway.FindOrder(ctx, o.ID())
	if findErr != nil {
		h.lifecycle.logger.WarnContext(ctx, "AWB lookup after failed assignment failed",
			"order_id", o.ID().String(), "error", findErr)
		return ports.AWB{}, err
	}
	if existing.AWBCode == "" {
		return ports.AWB{}, err
	}
	h.lifecycle.logger.InfoContext(ctx, "adopted AWB issued by an earlier call",
		"order_id", o.ID().String(), "awb", existing.AWBCode)
	return ports.AWB{AWBCode: existing.AWBCode}, nil
}

func (h *GenerateAWBCommandHandler) chooseCourier(ctx context.Context, o *order.Order, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	if preferred := o.Shipment().PreferredCourierID(); preferred > 0 {
		return preferred
	}
	if !h.autoSelect {
		return 0
	}

	quotes, err := h.gateway.ListCouriers(ctx, serviceabilityQuery(o))
	if err != nil {
		h.lifecycle.logger.WarnContext(ctx, "courier listing failed, provider will assign",
			"order_id", o.ID().String(), "error", err)
		return 0
	}
	best, ok := h.selector.PickBest(quotes)
	if !ok {
		return 0
	}
	return best.CourierID()
}

func serviceabilityQuery(o *order.Order) ports.ServiceabilityQuery {
	return ports.ServiceabilityQuery{
		ProviderOrderID:  o.Shipment().ProviderOrderID(),
		DeliveryPostcode: o.Customer().Address().Postcode(),
		WeightKg:         o.Parcel().WeightKg(),
		COD:              o.PaymentStatus().IsCOD(),
	}
}
