package queries

import (
	"context"

	"shipping/internal/core/ports"
)

type GetRatesQueryHandler struct {
	gateway ports.LogisticsGateway
	ranker  courierRanker
}

func NewGetRatesQueryHandler(gateway ports.LogisticsGateway, ranker courierRanker) GetRatesQueryHandler {
	return GetRatesQueryHandler{gateway: gateway, ranker: ranker}
}

// Handle returns the provider's quotes for the route, ranked.
func (h GetRatesQueryHandler) Handle(ctx context.Context, query GetRatesQuery) ([]RankedCourier, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	quotes, err := h.gateway.GetRates(ctx, ports.RateQuery{
		PickupPostcode:   query.PickupPostcode(),
		DeliveryPostcode: query.DeliveryPostcode(),
		WeightKg:         query.WeightKg(),
		COD:              query.COD(),
		DeclaredValue:    query.DeclaredValue(),
	})
	if err != nil {
		return nil, err
	}

	return rankedCouriers(h.ranker.Rank(quotes)), nil
}
