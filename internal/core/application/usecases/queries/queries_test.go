package queries_test

import (
	"testing"

	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	tests := []struct {
		name     string
		validate func() error
		expected error
	}{
		{"open shipments", queries.GetOpenShipmentsQuery{}.Validate, queries.ErrGetOpenShipmentsQueryIsNotConstructed},
		{"order", queries.GetOrderQuery{}.Validate, queries.ErrGetOrderQueryIsNotConstructed},
		{"issues", queries.ListReconciliationIssuesQuery{}.Validate, queries.ErrListReconciliationIssuesQueryIsNotConstructed},
		{"couriers", queries.ListCouriersQuery{}.Validate, queries.ErrListCouriersQueryIsNotConstructed},
		{"rates", queries.GetRatesQuery{}.Validate, queries.ErrGetRatesQueryIsNotConstructed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.validate(), tt.expected)
		})
	}
}

func TestNewGetOpenShipmentsQuery(t *testing.T) {
	t.Run("zero limit means all", func(t *testing.T) {
		q, err := queries.NewGetOpenShipmentsQuery(0)
		require.NoError(t, err)
		assert.NoError(t, q.Validate())
		assert.Equal(t, 0, q.Limit())
	})

	t.Run("negative limit is rejected", func(t *testing.T) {
		_, err := queries.NewGetOpenShipmentsQuery(-1)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestNewGetOrderQuery_RequiresID(t *testing.T) {
	_, err := queries.NewGetOrderQuery(kernel.UUID{})
	require.Error(t, err)

	q, err := queries.NewGetOrderQuery(kernel.NewUUID())
	require.NoError(t, err)
	assert.NoError(t, q.Validate())
}

func TestNewGetRatesQuery(t *testing.T) {
	t.Run("trims postcodes", func(t *testing.T) {
		q, err := queries.NewGetRatesQuery(queries.GetRatesParams{
			PickupPostcode:   " 110001 ",
			DeliveryPostcode: "560001",
			WeightKg:         decimal.RequireFromString("1.25"),
			COD:              true,
		})
		require.NoError(t, err)
		assert.Equal(t, "110001", q.PickupPostcode())
		assert.True(t, q.COD())
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := queries.NewGetRatesQuery(queries.GetRatesParams{WeightKg: decimal.Zero})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "pickupPostcode")
		assert.Contains(t, err.Error(), "deliveryPostcode")
	})
}
