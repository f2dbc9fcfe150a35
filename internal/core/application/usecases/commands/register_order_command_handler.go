package commands

import (
	"context"
	"errors"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"
)

// RegisterOrderResult is the provider's id for the order.
type RegisterOrderResult struct {
	ProviderOrderID string

	// AlreadyRegistered is set when the order was registered before and no
	// remote call was made.
	AlreadyRegistered bool
}

// RegisterOrderCommandHandler registers accepted orders with the logistics
// provider. Registration is idempotent: a registered order returns its
// existing provider id and a duplicate-order response from the provider is
// resolved by looking the registration up.
type RegisterOrderCommandHandler struct {
	lifecycle *Lifecycle
	gateway   ports.LogisticsGateway
}

func NewRegisterOrderCommandHandler(lifecycle *Lifecycle, gateway ports.LogisticsGateway) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{
		lifecycle: lifecycle,
		gateway:   gateway,
	}
}

func (h *RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) (RegisterOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return RegisterOrderResult{}, err
	}

	var result RegisterOrderResult
	err := h.lifecycle.transition(ctx, cmd.OrderID(), "register", false, func(o *order.Order) error {
		if o.IsRegistered() {
			result = RegisterOrderResult{
				ProviderOrderID:   o.Shipment().ProviderOrderID(),
				AlreadyRegistered: true,
			}
			return nil
		}

		if err := o.CanRegister(); err != nil {
			return err
		}
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

		result = RegisterOrderResult{ProviderOrderID: providerOrderID}
		return nil
	})
	return result, err
}

// registerWithProvider creates the provider order. Duplicate and ambiguous
// responses are resolved through FindOrder so a registration is never made
// twice.
func registerWithProvider(ctx context.Context, gateway ports.LogisticsGateway, l *Lifecycle, o *order.Order) (string, error) {
	created, err := gateway.CreateOrder(ctx, ports.RegisterOrderRequest{
		OrderID:        o.ID(),
		OrderedAt:      l.clock.Now(),
		Customer:       o.Customer(),
		Parcel:         o.Parcel(),
		Payment:        o.PaymentStatus(),
		PickupLocation: order.DefaultPickupLocation,
	})
	if err == nil {
		if created.ProviderOrderID == "" {
			return "", errs.NewPermanentProviderError("create_order", "", "provider returned no order id")
		}
		return created.ProviderOrderID, nil
	}

	if !errs.HasCode(err, errs.ProviderCodeDuplicateOrder) && !isAmbiguous(err) {
		return "", err
	}

	existing, findErr := gateway.FindOrder(ctx, o.ID())
	if findErr != nil || existing.ProviderOrderID == "" {
		l.logger.WarnContext(ctx, "provider order lookup failed",
			"order_id", o.ID().String(), "error", findErr)
		return "", err
	}
	l.logger.InfoContext(ctx, "adopted existing provider order",
		"order_id", o.ID().String(), "provider_order_id", existing.ProviderOrderID)
	return existing.ProviderOrderID, nil
}

func isAmbiguous(err error) bool {
	var pe *errs.ProviderError
	return errors.As(err, &pe) && pe.Ambiguous
}
