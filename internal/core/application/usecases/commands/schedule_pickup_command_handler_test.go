package commands_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shipping/internal/adapters/out/logistics"
	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/clock"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSchedulePickupCommandHandler_Handle(t *testing.T) {
	tomorrow := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	t.Run("should return the same token for the same day", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageCourierAssigned)
		e.gateway.On("SchedulePickup", mock.Anything, "SH-1", tomorrow).
			Return(ports.PickupConfirmation{Token: "PU-42"}, nil).Once()
		handler := commands.NewSchedulePickupCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewSchedulePickupCommand(o.ID(), tomorrow.Add(15*time.Hour))
		require.NoError(t, err)

		first, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		second, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, "PU-42", first.Token)
		assert.Equal(t, first.Token, second.Token)
		assert.False(t, first.AlreadyScheduled)
		assert.True(t, second.AlreadyScheduled)
		assert.Equal(t, order.StagePickupScheduled, second.Stage)
		assert.Equal(t, []string{"pickup_scheduled"}, e.publisher.toStages())
	})

	t.Run("should reschedule for a different day", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StagePickupScheduled)
		e.gateway.On("SchedulePickup", mock.Anything, "SH-1", tomorrow).
			Return(ports.PickupConfirmation{Token: "PU-43", Date: tomorrow}, nil).Once()
		handler := commands.NewSchedulePickupCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewSchedulePickupCommand(o.ID(), tomorrow)
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, "PU-43", result.Token)
		assert.Equal(t, "PU-43", e.store.order(t, o.ID()).Shipment().Pickup().Token())
	})

	t.Run("should default to today", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StagePickupScheduled)
		handler := commands.NewSchedulePickupCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewSchedulePickupCommand(o.ID(), time.Time{})
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.True(t, result.AlreadyScheduled)
		assert.Equal(t, "PU-1", result.Token)
	})

	t.Run("should require an AWB", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageShipmentCreated)
		handler := commands.NewSchedulePickupCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewSchedulePickupCommand(o.ID(), tomorrow)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestFetchLabelCommandHandler_Handle(t *testing.T) {
	t.Run("should fetch once and then serve the stored URL", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageAWBGenerated)
		e.gateway.On("GetLabel", mock.Anything, "SH-1").
			Return("https://labels.example.com/SH-1.pdf", nil).Once()
		handler := commands.NewFetchLabelCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewFetchLabelCommand(o.ID())
		require.NoError(t, err)

		first, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		second, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, "https://labels.example.com/SH-1.pdf", first)
		assert.Equal(t, first, second)
		assert.Equal(t, order.StageAWBGenerated, e.store.order(t, o.ID()).Stage())
	})

	t.Run("should require an AWB", func(t *testing.T) {
		e := newEnv(t)
		o := e.seed(t, order.StageRegistered)
		handler := commands.NewFetchLabelCommandHandler(e.lifecycle, e.gateway)
		cmd, err := commands.NewFetchLabelCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)

		assert.ErrorIs(t, err, errs.ErrTransitionIsInvalid)
	})
}

func TestSchedulePickupCommandHandler_ProviderZoneAheadOfUTC(t *testing.T) {
	var pickups atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "t"})
	})
	mux.HandleFunc("POST /courier/generate/pickup", func(w http.ResponseWriter, r *http.Request) {
		token := fmt.Sprintf("PU-%d", pickups.Add(1))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"pickup_status": 1, "response": map[string]any{
			"pickup_token_number":   token,
			"pickup_scheduled_date": "2026-10-21",
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	gateway := logistics.NewClient(logistics.Config{BaseURL: srv.URL, Location: kolkata},
		logistics.NewMemoryTokenStore(clock.System()), slog.New(slog.DiscardHandler))

	e := newEnv(t)
	o := e.seed(t, order.StageCourierAssigned)
	handler := commands.NewSchedulePickupCommandHandler(e.lifecycle, gateway)
	day := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	cmd, err := commands.NewSchedulePickupCommand(o.ID(), day)
	require.NoError(t, err)

	first, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	second, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, day, first.Date)
	assert.Equal(t, first.Token, second.Token)
	assert.True(t, second.AlreadyScheduled)
	assert.Equal(t, int32(1), pickups.Load())
	assert.Equal(t, day, e.store.order(t, o.ID()).Shipment().Pickup().Date())
}
