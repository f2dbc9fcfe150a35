package queries_test

import (
	"context"
	"errors"
	"testing"

	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubGateway answers the quote calls; any other gateway method panics.
type stubGateway struct {
	ports.LogisticsGateway
	mock.Mock
}

func (m *stubGateway) ListCouriers(ctx context.Context, query ports.ServiceabilityQuery) ([]courier.Quote, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courier.Quote), args.Error(1)
}

func (m *stubGateway) GetRates(ctx context.Context, query ports.RateQuery) ([]courier.Quote, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courier.Quote), args.Error(1)
}

func quote(t *testing.T, id int, name, freight string, days int, serviceable bool) courier.Quote {
	t.Helper()
	charge, err := kernel.MoneyFromString(freight)
	require.NoError(t, err)
	q, err := courier.NewQuote(courier.QuoteParams{
		CourierID:     id,
		Name:          name,
		FreightCharge: charge,
		EstimatedDays: days,
		Serviceable:   serviceable,
		Surface:       id%2 == 0,
	})
	require.NoError(t, err)
	return q
}

func ratesQuery(t *testing.T) queries.GetRatesQuery {
	t.Helper()
	q, err := queries.NewGetRatesQuery(queries.GetRatesParams{
		PickupPostcode:   "110001",
		DeliveryPostcode: "560001",
		WeightKg:         decimal.RequireFromString("0.5"),
	})
	require.NoError(t, err)
	return q
}

func TestGetRatesQueryHandler_Handle(t *testing.T) {
	t.Run("ranks quotes and recommends the best serviceable one", func(t *testing.T) {
		gateway := new(stubGateway)
		gateway.On("GetRates", mock.Anything, mock.MatchedBy(func(q ports.RateQuery) bool {
			return q.PickupPostcode == "110001" && q.DeliveryPostcode == "560001"
		})).Return([]courier.Quote{
			quote(t, 1, "Air", "120.00", 2, true),
			quote(t, 2, "Surface", "80.00", 5, true),
			quote(t, 3, "Cheap but closed", "40.00", 4, false),
		}, nil).Once()

		handler := queries.NewGetRatesQueryHandler(gateway, services.NewCourierSelector())
		ranked, err := handler.Handle(t.Context(), ratesQuery(t))

		require.NoError(t, err)
		require.Len(t, ranked, 3)
		assert.Equal(t, 2, ranked[0].CourierID)
		assert.True(t, ranked[0].Recommended)
		assert.Equal(t, []courier.Badge{courier.BadgeSurface}, ranked[0].Badges)
		assert.Equal(t, 1, ranked[1].CourierID)
		assert.False(t, ranked[1].Recommended)
		assert.Equal(t, 3, ranked[2].CourierID)
		gateway.AssertExpectations(t)
	})

	t.Run("no quotes is an empty list", func(t *testing.T) {
		gateway := new(stubGateway)
		gateway.On("GetRates", mock.Anything, mock.Anything).Return([]courier.Quote{}, nil).Once()

		handler := queries.NewGetRatesQueryHandler(gateway, services.NewCourierSelector())
		ranked, err := handler.Handle(t.Context(), ratesQuery(t))

		require.NoError(t, err)
		assert.Empty(t, ranked)
	})

	t.Run("provider errors are returned unchanged", func(t *testing.T) {
		providerErr := errs.NewPermanentProviderError("get_rates", errs.ProviderCodeInvalidAddress, "delivery postcode is not serviceable")
		gateway := new(stubGateway)
		gateway.On("GetRates", mock.Anything, mock.Anything).Return(nil, providerErr).Once()

		handler := queries.NewGetRatesQueryHandler(gateway, services.NewCourierSelector())
		_, err := handler.Handle(t.Context(), ratesQuery(t))

		assert.True(t, errors.Is(err, errs.ErrPermanentProvider))
	})

	t.Run("not constructed query", func(t *testing.T) {
		handler := queries.NewGetRatesQueryHandler(new(stubGateway), services.NewCourierSelector())
		_, err := handler.Handle(t.Context(), queries.GetRatesQuery{})
		assert.ErrorIs(t, err, queries.ErrGetRatesQueryIsNotConstructed)
	})
}
