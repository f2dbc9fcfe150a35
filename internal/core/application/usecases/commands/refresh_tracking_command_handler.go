package commands

import (
	"context"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
)

// RefreshTrackingResult summarizes one tracking refresh.
type RefreshTrackingResult struct {
	Stage   order.Stage
	Applied int

	// Issue is set when the provider reported a cancellation the order does
	// not reflect.
	Issue *order.ReconciliationIssue
}

// RefreshTrackingCommandHandler applies provider tracking to an order. It
// serves both the on-demand refresh and the tracking poller.
//
// Only events newer than the last sync are applied and stored. A
// provider-side cancellation of an open shipment is not applied; it opens a
// reconciliation issue for an operator.
type RefreshTrackingCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewRefreshTrackingCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) RefreshTrackingCommandHandler {
	return RefreshTrackingCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

func (h *RefreshTrackingCommandHandler) Handle(ctx context.Context, cmd RefreshTrackingCommand) (RefreshTrackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return RefreshTrackingResult{}, err
	}

	var result RefreshTrackingResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "refresh_tracking", cmd.SkipIfBusy(), func(o *order.Order) error {
		if err := o.CanTrack(); err != nil {
			return err
		}

		events, err := h.gateway.TrackByAWB(ctx, o.Shipment().AWBCode())
		if err != nil {
			return err
		}

		update, err := o.ApplyTracking(events)
		if err != nil {
			return err
		}
		result.Stage = o.Stage()
		if len(update.Applied) == 0 {
			return nil
		}

		err = h.lifecycle.save(ctx, o, func(uow UoW) error {
			if err := uow.TrackingEventRepository().Append(ctx, o.ID(), update.Applied); err != nil {
				return err
			}
			if !update.RemoteCancelled {
				return nil
			}
			issue, err := h.lifecycle.openIssue(ctx, uow, o, "provider reports the shipment cancelled")
			if err != nil {
				return err
			}
			result.Issue = issue
			return nil
		})
		if err != nil {
			return err
		}

		result.Applied = len(update.Applied)
		return nil
	})
	return result, err
}
