package commands_test

import (
	"testing"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterOrderCommandHandler_Handle(t *testing.T) {
	t.Run("should register an accepted order", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAccepted)
		e.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req ports.RegisterOrderRequest) bool {
			return req.OrderID.IsEqual(o.ID()) && req.PickupLocation == order.DefaultPickupLocation
		})).Return(ports.ProviderOrder{ProviderOrderID: "PO-77"}, nil).Once()

		handler := commands.NewRegisterOrderCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRegisterOrderCommand(o.ID())
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, commands.RegisterOrderResult{ProviderOrderID: "PO-77"}, result)
		stored := e.store.order(t, o.ID())
		assert.Equal(t, order.StageRegistered, stored.Stage())
		assert.Equal(t, order.Processing, stored.Status())
		assert.Equal(t, []string{"registered"}, e.publisher.toStages())
	})

	t.Run("should return the existing id without a remote call", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageShipmentCreated)
		handler := commands.NewRegisterOrderCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRegisterOrderCommand(o.ID())
		require.NoError(t, err)

		first, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		second, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, "PO-1", first.ProviderOrderID)
		assert.True(t, first.AlreadyRegistered)
		assert.Equal(t, first, second)
		e.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("should adopt the registration on a duplicate response", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAccepted)
		mock.InOrder(
			e.gateway.On("CreateOrder", mock.Anything, mock.Anything).
				Return(ports.ProviderOrder{}, errs.NewPermanentProviderError("create_order", errs.ProviderCodeDuplicateOrder, "order already exists")).Once(),
			e.gateway.On("FindOrder", mock.Anything, o.ID()).
				Return(ports.ProviderOrder{ProviderOrderID: "PO-9"}, nil).Once(),
		)
		handler := commands.NewRegisterOrderCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRegisterOrderCommand(o.ID())
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "PO-9", result.ProviderOrderID)
		assert.Equal(t, "PO-9", e.store.order(t, o.ID()).Shipment().ProviderOrderID())
	})

	t.Run("should keep the stage and record a transient failure", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAccepted)
		e.gateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(ports.ProviderOrder{}, timeoutError("create_order")).Once()
		handler := commands.NewRegisterOrderCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRegisterOrderCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrTransientProvider)
		assert.True(t, errs.KindOf(err).RetryLater())
		stored := e.store.order(t, o.ID())
		assert.Equal(t, order.StageAccepted, stored.Stage())
		require.NotNil(t, stored.Shipment().LastFailure())
		assert.Equal(t, "transient_provider", stored.Shipment().LastFailure().Kind)
		assert.Equal(t, "request timed out", stored.Shipment().LastFailure().Message)
		assert.Equal(t, testNow, stored.Shipment().LastFailure().At)
	})

	t.Run("should refuse a pending order", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageNone)
		handler := commands.NewRegisterOrderCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRegisterOrderCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}
