package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"
)

// CancelOrderResult is the outcome of a cancellation.
type CancelOrderResult struct {
	Stage order.Stage

	// Issue is the reconciliation issue opened when the provider could not
	// cancel the shipment.
	Issue *order.ReconciliationIssue
}

// CancelOrderCommandHandler cancels orders. A failed remote cancellation does
// not block the local one: the order is cancelled, a reconciliation issue is
// stored in the same transaction and an *errs.ReconciliationError is returned
// together with the result.
type CancelOrderCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewCancelOrderCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (CancelOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CancelOrderResult{}, err
	}

	var result CancelOrderResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "cancel", false, func(o *order.Order) error {
		if err := o.CanCancel(); err != nil {
			return err
		}

		var remoteErr error
		if s := o.Shipment(); s != nil && s.ShipmentID() != "" {
			remoteErr = h.gateway.CancelShipment(ctx, ports.CancelShipmentRequest{
				ProviderOrderID: s.ProviderOrderID(),
				AWBCode:         s.AWBCode(),
			})
		}

		if err := o.Cancel(); err != nil {
			return err
		}

		detail := "provider cancellation failed: " + failureMessageOf(remoteErr)
		err := h.lifecycle.save(ctx, o, func(uow UoW) error {
			if remoteErr == nil {
				return nil
			}
			issue, err := h.lifecycle.openIssue(ctx, uow, o, detail)
			if err != nil {
				return err
			}
			result.Issue = issue
			return nil
		})
		if err != nil {
			return err
		}

		result.Stage = o.Stage()
		h.lifecycle.logger.InfoContext(ctx, "order cancelled",
			"order_id", o.ID().String(), "reason", cmd.Reason(), "remote_failed", remoteErr != nil)
		if remoteErr != nil {
			return errs.NewReconciliationErrorWithCause(o.ID().String(), detail, remoteErr)
		}
		return nil
	})
	return result, err
}

func failureMessageOf(err error) string {
	if err == nil {
		return ""
	}
	return failureMessage(err)
}
