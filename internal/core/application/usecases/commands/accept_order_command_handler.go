package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
)

// AcceptOrderCommandHandler accepts pending orders and opens their shipment.
type AcceptOrderCommandHandler struct {
	lifecycle *Lifecycle
}

func NewAcceptOrderCommandHandler(lifecycle *Lifecycle) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{lifecycle: lifecycle}
}

func (h *AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.lifecycle.transition(ctx, cmd.OrderID(), "accept", false, func(o *order.Order) error {
		if err := o.Accept(); err != nil {
			return err
		}
		return h.lifecycle.save(ctx, o, nil)
	})
}
