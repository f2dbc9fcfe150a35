package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
)

// CreateOrderCommandHandler stores a new pending order.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(lifecycle)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	lifecycle *Lifecycle
}

func NewCreateOrderCommandHandler(lifecycle *Lifecycle) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		lifecycle: lifecycle,
	}
}

// Handle creates the order in the pending status. A duplicate order id is
// reported by the repository as a conflict.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Customer(), cmd.Parcel(), cmd.PaymentStatus())
	if err != nil {
		return err
	}

	return h.lifecycle.commit(ctx, func(uow UoW) error {
		return uow.OrderRepository().Add(ctx, o)
	})
}
