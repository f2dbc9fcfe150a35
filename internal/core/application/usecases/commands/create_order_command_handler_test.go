package commands_test

import (
	"testing"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderCommandHandler_Handle(t *testing.T) {
	e := newEnv(t)
	handler := commands.NewCreateOrderCommandHandler(e.lifecycle)

	cmd, err := commands.NewCreateOrderCommand(validOrderParams())
	require.NoError(t, err)

	require.NoError(t, handler.Handle(t.Context(), cmd))

	stored := e.store.order(t, cmd.OrderID())
	assert.Equal(t, order.Pending, stored.Status())
	assert.Equal(t, order.StageNone, stored.Stage())
	assert.Nil(t, stored.Shipment())
	assert.Empty(t, e.publisher.toStages())
}

func TestCreateOrderCommandHandler_DuplicateID(t *testing.T) {
	e := newEnv(t)
	handler := commands.NewCreateOrderCommandHandler(e.lifecycle)

	cmd, err := commands.NewCreateOrderCommand(validOrderParams())
	require.NoError(t, err)
	require.NoError(t, handler.Handle(t.Context(), cmd))

	err = handler.Handle(t.Context(), cmd)

	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestCreateOrderCommandHandler_UnconstructedCommand(t *testing.T) {
	e := newEnv(t)
	handler := commands.NewCreateOrderCommandHandler(e.lifecycle)

	err := handler.Handle(t.Context(), commands.CreateOrderCommand{})

	assert.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}
