package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
)

// OverrideStatusCommandHandler applies operator status overrides.
type OverrideStatusCommandHandler struct {
	lifecycle *Lifecycle
}

func NewOverrideStatusCommandHandler(lifecycle *Lifecycle) OverrideStatusCommandHandler {
	return OverrideStatusCommandHandler{lifecycle: lifecycle}
}

func (h *OverrideStatusCommandHandler) Handle(ctx context.Context, cmd OverrideStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.lifecycle.transition(ctx, cmd.OrderID(), "override_status", false, func(o *order.Order) error {
		previous := o.Status()
		if err := o.OverrideStatus(cmd.Status()); err != nil {
			return err
		}
		if err := h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}
		h.lifecycle.logger.InfoContext(ctx, "order status overridden",
			"order_id", o.ID().String(), "from", previous.String(), "to", cmd.Status().String())
		return nil
	})
}
