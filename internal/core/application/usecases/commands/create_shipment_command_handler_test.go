package commands_test

import (
	"sync"
	"testing"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewCreateShipmentCommand_DefaultsPickupLocation(t *testing.T) {
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), "  ")

	require.NoError(t, err)
	assert.Equal(t, "Primary", cmd.PickupLocation())
}

func TestCreateShipmentCommandHandler_Handle(t *testing.T) {
	t.Run("should register and create the shipment of an accepted order", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAccepted)
		mock.InOrder(
			e.gateway.On("CreateOrder", mock.Anything, mock.Anything).
				Return(ports.ProviderOrder{ProviderOrderID: "PO-5"}, nil).Once(),
			e.gateway.On("CreateShipment", mock.Anything, mock.MatchedBy(func(req ports.CreateShipmentRequest) bool {
				return req.ProviderOrderID == "PO-5" && req.PickupLocation == "Primary"
			})).Return(ports.CreatedShipment{ShipmentID: "SH-5"}, nil).Once(),
		)
		handler := commands.NewCreateShipmentCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewCreateShipmentCommand(o.ID(), "Primary")
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "SH-5", result.ShipmentID)
		assert.Equal(t, order.StageShipmentCreated, result.Stage)
		stored := e.store.order(t, o.ID())
		assert.Equal(t, order.StageShipmentCreated, stored.Stage())
		assert.Equal(t, "Primary", stored.Shipment().PickupLocation())
		assert.Equal(t, []string{"registered", "shipment_created"}, e.publisher.toStages())

		_, err = handler.Handle(t.Context(), cmd)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("should keep the registration when shipment creation fails", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAccepted)
		e.gateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(ports.ProviderOrder{ProviderOrderID: "PO-5"}, nil).Once()
		e.gateway.On("CreateShipment", mock.Anything, mock.Anything).
			Return(ports.CreatedShipment{}, errs.NewPermanentProviderError("create_shipment", errs.ProviderCodeInvalidAddress, "Delivery postcode is not serviceable")).Once()
		handler := commands.NewCreateShipmentCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewCreateShipmentCommand(o.ID(), "")
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPermanentProvider)
		assert.False(t, errs.KindOf(err).RetryLater())
		stored := e.store.order(t, o.ID())
		assert.Equal(t, order.StageRegistered, stored.Stage())
		require.NotNil(t, stored.Shipment().LastFailure())
		assert.Equal(t, "Delivery postcode is not serviceable", stored.Shipment().LastFailure().Message)
	})

	t.Run("should adopt a shipment created by an ambiguous call", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageRegistered)
		ambiguous := timeoutError("create_shipment")
		ambiguous.(*errs.ProviderError).Ambiguous = true
		mock.InOrder(
			e.gateway.On("CreateShipment", mock.Anything, mock.Anything).
				Return(ports.CreatedShipment{}, ambiguous).Once(),
			e.gateway.On("FindOrder", mock.Anything, o.ID()).
				Return(ports.ProviderOrder{ProviderOrderID: "PO-1", ShipmentID: "SH-remote"}, nil).Once(),
		)
		handler := commands.NewCreateShipmentCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewCreateShipmentCommand(o.ID(), "")
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "SH-remote", result.ShipmentID)
		e.gateway.AssertNumberOfCalls(t, "CreateShipment", 1)
	})

	t.Run("should retry once when the ambiguous call created nothing", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageRegistered)
		ambiguous := timeoutError("create_shipment")
		ambiguous.(*errs.ProviderError).Ambiguous = true
		mock.InOrder(
			e.gateway.On("CreateShipment", mock.Anything, mock.Anything).
				Return(ports.CreatedShipment{}, ambiguous).Once(),
			e.gateway.On("FindOrder", mock.Anything, o.ID()).
				Return(ports.ProviderOrder{ProviderOrderID: "PO-1"}, nil).Once(),
			e.gateway.On("CreateShipment", mock.Anything, mock.Anything).
				Return(ports.CreatedShipment{ShipmentID: "SH-2"}, nil).Once(),
		)
		handler := commands.NewCreateShipmentCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewCreateShipmentCommand(o.ID(), "")
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "SH-2", result.ShipmentID)
	})

	t.Run("should create one remote shipment under concurrent calls", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageRegistered)
		e.gateway.On("CreateShipment", mock.Anything, mock.Anything).
			After(20*time.Millisecond).
			Return(ports.CreatedShipment{ShipmentID: "SH-once"}, nil).Once()
		handler := commands.NewCreateShipmentCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewCreateShipmentCommand(o.ID(), "")
		require.NoError(t, err)

		const callers = 5
		var wg sync.WaitGroup
		results := make(chan error, callers)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := handler.Handle(t.Context(), cmd)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var succeeded, rejected int
		for err := range results {
			switch errs.KindOf(err) {
			case errs.KindNone:
				succeeded++
			case errs.KindValidation:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, callers-1, rejected)
		e.gateway.AssertNumberOfCalls(t, "CreateShipment", 1)
		assert.Equal(t, "SH-once", e.store.order(t, o.ID()).Shipment().ShipmentID())
	})
}
