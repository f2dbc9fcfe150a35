package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// FetchLabelCommandHandler fetches and stores shipping labels. A label that
// was fetched before is returned without a remote call.
type FetchLabelCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewFetchLabelCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) FetchLabelCommandHandler {
	return FetchLabelCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

// Handle returns the label URL.
func (h *FetchLabelCommandHandler) Handle(ctx context.Context, cmd FetchLabelCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	var url string
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "fetch_label", false, func(o *order.Order) error {
		if err := o.CanFetchLabel(); err != nil {
			return err
		}
		if stored := o.Shipment().LabelURL(); stored != "" {
			url = stored
			return nil
		}

		fetched, err := h.gateway.GetLabel(ctx, o.Shipment().ShipmentID())
		if err != nil {
			return err
		}
		if err = o.SetLabelURL(fetched); err != nil {
			return err
		}
		if err = h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}
		url = fetched
		return nil
	})
	return url, err
}
