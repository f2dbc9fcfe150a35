package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
)

// RejectOrderCommandHandler rejects pending or accepted, unregistered orders.
type RejectOrderCommandHandler struct {
	lifecycle *Lifecycle
}

func NewRejectOrderCommandHandler(lifecycle *Lifecycle) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{lifecycle: lifecycle}
}

func (h *RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.lifecycle.transition(ctx, cmd.OrderID(), "reject", false, func(o *order.Order) error {
		if err := o.Reject(); err != nil {
			return err
		}
		if err := h.lifecycle.save(ctx, o, nil); err != nil {
			return err
		}
		h.lifecycle.logger.InfoContext(ctx, "order rejected",
			"order_id", o.ID().String(), "reason", cmd.Reason())
		return nil
	})
}
