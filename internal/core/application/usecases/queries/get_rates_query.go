package queries

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetRatesQueryIsNotConstructed = errors.New(
		"GetRatesQuery must be created via NewGetRatesQuery constructor",
	)
)

// GetRatesQuery prices a route before any order exists.
type GetRatesQuery struct {
	pickupPostcode   string
	deliveryPostcode string
	weightKg         decimal.Decimal
	cod              bool
	declaredValue    kernel.Money
	guard            guard.ConstructorGuard
}

// GetRatesParams groups the rate request inputs.
type GetRatesParams struct {
	PickupPostcode   string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	COD              bool
	DeclaredValue    kernel.Money
}

// NewGetRatesQuery requires both postcodes and a positive weight.
func NewGetRatesQuery(p GetRatesParams) (GetRatesQuery, error) {
	pickup := strings.TrimSpace(p.PickupPostcode)
	delivery := strings.TrimSpace(p.DeliveryPostcode)

	var err error
	if pickup == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("pickupPostcode"))
	}
	if delivery == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("deliveryPostcode"))
	}
	if !p.WeightKg.IsPositive() {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("weightKg", p.WeightKg.String(), "0 (exclusive)", "+inf"))
	}
	if err != nil {
		return GetRatesQuery{}, err
	}

	return GetRatesQuery{
		pickupPostcode:   pickup,
		deliveryPostcode: delivery,
		weightKg:         p.WeightKg,
		cod:              p.COD,
		declaredValue:    p.DeclaredValue,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (q GetRatesQuery) Validate() error {
	return q.guard.Validate(ErrGetRatesQueryIsNotConstructed)
}

func (q GetRatesQuery) PickupPostcode() string      { return q.pickupPostcode }
func (q GetRatesQuery) DeliveryPostcode() string    { return q.deliveryPostcode }
func (q GetRatesQuery) WeightKg() decimal.Decimal   { return q.weightKg }
func (q GetRatesQuery) COD() bool                   { return q.cod }
func (q GetRatesQuery) DeclaredValue() kernel.Money { return q.declaredValue }
