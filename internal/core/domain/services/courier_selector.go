package services

import (
	"sort"

	"shipping/internal/core/domain/model/courier"
)

// CourierSelector ranks courier quotes for a shipment.
//
// Ranking rules, applied in order:
//   - serviceable couriers before non-serviceable ones
//   - lower freight charge first
//   - fewer estimated days first
//   - ties keep the provider's order
//
// An empty list is not an error: the caller shows "no service" to the operator.
//
// Example usage:
//
//	selector := services.NewCourierSelector()
//	best, ok := selector.PickBest(quotes)
//	if !ok {
//	    // no courier services this route; let the provider auto-assign
//	}
type CourierSelector struct{}

// NewCourierSelector creates a new CourierSelector instance.
func NewCourierSelector() CourierSelector {
	return CourierSelector{}
}

// Rank returns a copy of quotes in ranking order. Quotes that fail validation
// are dropped.
func (CourierSelector) Rank(quotes []courier.Quote) []courier.Quote {
	ranked := make([]courier.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Validate() == nil {
			ranked = append(ranked, q)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Serviceable() != b.Serviceable() {
			return a.Serviceable()
		}
		if c := a.FreightCharge().Cmp(b.FreightCharge()); c != 0 {
			return c < 0
		}
		return a.EstimatedDays() < b.EstimatedDays()
	})
	return ranked
}

// PickBest returns the top serviceable quote.
//
// Returns:
//   - (quote, true) when at least one serviceable courier exists
//   - (zero Quote, false) otherwise
func (s CourierSelector) PickBest(quotes []courier.Quote) (courier.Quote, bool) {
	ranked := s.Rank(quotes)
	if len(ranked) == 0 || !ranked[0].Serviceable() {
		return courier.Quote{}, false
	}
	return ranked[0], true
}
