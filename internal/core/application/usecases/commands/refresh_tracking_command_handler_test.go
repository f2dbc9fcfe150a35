package commands_test

import (
	"testing"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func trackingEvent(t *testing.T, at time.Time, status string) order.TrackingEvent {
	t.Helper()
	e, err := order.NewTrackingEvent(at, status, "Bengaluru Hub")
	require.NoError(t, err)
	return e
}

func TestRefreshTrackingCommandHandler_Handle(t *testing.T) {
	t.Run("should deliver on a newer event and ignore older ones", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageInTransit)
		first := []order.TrackingEvent{trackingEvent(t, testNow, "In Transit")}
		second := []order.TrackingEvent{
			trackingEvent(t, testNow.Add(-time.Hour), "Picked Up"),
			trackingEvent(t, testNow, "In Transit"),
			trackingEvent(t, testNow.Add(2*time.Hour), "Delivered"),
		}
		e.gateway.On("TrackByAWB", mock.Anything, "AWB-1").Return(first, nil).Once()
		e.gateway.On("TrackByAWB", mock.Anything, "AWB-1").Return(second, nil).Once()
		handler := commands.NewRefreshTrackingCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRefreshTrackingCommand(o.ID(), false)
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, order.StageInTransit, result.Stage)

		result, err = handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, order.StageDelivered, result.Stage)

		stored := e.store.order(t, o.ID())
		assert.Equal(t, order.StageDelivered, stored.Stage())
		assert.Equal(t, order.Delivered, stored.Status())
		assert.Equal(t, testNow.Add(2*time.Hour), stored.Shipment().LastTrackingSyncAt())
		assert.Len(t, e.store.eventList(o.ID()), 2)
		assert.Equal(t, []string{"delivered"}, e.publisher.toStages())
	})

	t.Run("should open an issue when the provider cancelled the shipment", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageCourierAssigned)
		e.gateway.On("TrackByAWB", mock.Anything, "AWB-1").
			Return([]order.TrackingEvent{trackingEvent(t, testNow, "Canceled")}, nil).Once()
		handler := commands.NewRefreshTrackingCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRefreshTrackingCommand(o.ID(), true)
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		require.NotNil(t, result.Issue)
		assert.Equal(t, order.StageCourierAssigned, result.Stage)
		assert.Len(t, e.store.issueList(), 1)
	})

	t.Run("should skip a busy order when asked to", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageInTransit)
		unlock, ok := e.locker.TryLock("order:" + o.ID().String())
		require.True(t, ok)
		defer unlock()
		handler := commands.NewRefreshTrackingCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRefreshTrackingCommand(o.ID(), true)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		assert.ErrorIs(t, err, errs.ErrConflict)
		e.gateway.AssertNotCalled(t, "TrackByAWB", mock.Anything, mock.Anything)
	})

	t.Run("should refuse an order without an AWB", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageShipmentCreated)
		handler := commands.NewRefreshTrackingCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewRefreshTrackingCommand(o.ID(), false)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestRefreshTrackingCommandHandler_OperatorClosedStatus(t *testing.T) {
	e := newEnv(t)
	o := e.seed(t, order.StagePickupScheduled)
	override := commands.NewOverrideStatusCommandHandler(e.lifecycle)
	overrideCmd, err := commands.NewOverrideStatusCommand(o.ID(), order.Cancelled)
	require.NoError(t, err)
	_, err = override.Handle(t.Context(), overrideCmd)
	require.NoError(t, err)
	handler := commands.NewRefreshTrackingCommandHandler(e.lifecycle, e.gateway)
	cmd, err := commands.NewRefreshTrackingCommand(o.ID(), false)
	require.NoError(t, err)

	_, err = handler.Handle(t.Context(), cmd)

	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	stored := e.store.order(t, o.ID())
	assert.Equal(t, order.Cancelled, stored.Status())
	assert.Equal(t, order.StagePickupScheduled, stored.Stage())
	e.gateway.AssertNotCalled(t, "TrackByAWB", mock.Anything, mock.Anything)
}
