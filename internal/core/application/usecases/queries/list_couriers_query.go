package queries

import (
	"errors"

	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var (
	ErrListCouriersQueryIsNotConstructed = errors.New(
		"ListCouriersQuery must be created via NewListCouriersQuery constructor",
	)
)

// ListCouriersQuery asks the provider which couriers can serve a registered
// order and ranks them for the operator's manual choice.
//
// Example:
//
//	query, err := NewListCouriersQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	ranked, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	if len(ranked) == 0 {
//	    fmt.Println("no courier services this route")
//	}
type ListCouriersQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewListCouriersQuery(orderID kernel.UUID) (ListCouriersQuery, error) {
	if err := orderID.Validate(); err != nil {
		return ListCouriersQuery{}, err
	}
	return ListCouriersQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListCouriersQuery) Validate() error {
	return q.guard.Validate(ErrListCouriersQueryIsNotConstructed)
}

func (q ListCouriersQuery) OrderID() kernel.UUID {
	return q.orderID
}

// RankedCourier is one entry of a ranked courier list. Recommended marks the
// entry the automatic selection would pick.
type RankedCourier struct {
	CourierID     int
	Name          string
	FreightCharge kernel.Money
	CODCharge     kernel.Money
	EstimatedDays int
	Serviceable   bool
	Badges        []courier.Badge
	Recommended   bool
}

func rankedCouriers(ranked []courier.Quote) []RankedCourier {
	out := make([]RankedCourier, 0, len(ranked))
	for i, q := range ranked {
		out = append(out, RankedCourier{
			CourierID:     q.CourierID(),
			Name:          q.Name(),
			FreightCharge: q.FreightCharge(),
			CODCharge:     q.CODCharge(),
			EstimatedDays: q.EstimatedDays(),
			Serviceable:   q.Serviceable(),
			Badges:        q.Badges(),
			Recommended:   i == 0 && q.Serviceable(),
		})
	}
	return out
}
