package courier

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrQuoteIsNotConstructed is returned when a zero value Quote is used.
var ErrQuoteIsNotConstructed = errors.New("Quote must be created via NewQuote constructor")

// Badge marks the service type of a courier for the operator's ranked list.
type Badge string

const (
	BadgeSurface    Badge = "surface"
	BadgeHyperlocal Badge = "hyperlocal"
)

// Quote is one courier's offer for a shipment.
type Quote struct {
	courierID     int
	name          string
	freightCharge kernel.Money
	codCharge     kernel.Money
	estimatedDays int
	serviceable   bool
	surface       bool
	hyperlocal    bool
	guard         guard.ConstructorGuard
}

// QuoteParams groups the raw quote values parsed from the provider.
type QuoteParams struct {
	CourierID     int
	Name          string
	FreightCharge kernel.Money
	CODCharge     kernel.Money
	EstimatedDays int
	Serviceable   bool
	Surface       bool
	Hyperlocal    bool
}

// NewQuote validates the courier id, name and ETA.
func NewQuote(p QuoteParams) (Quote, error) {
	var errList []error
	if p.CourierID <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("courier_id", p.CourierID, 1, "+inf"))
	}
	if strings.TrimSpace(p.Name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("courier name"))
	}
	if p.EstimatedDays < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("estimated_days", p.EstimatedDays, 0, "+inf"))
	}
	if err := errors.Join(errList...); err != nil {
		return Quote{}, err
	}

	return Quote{
		courierID:     p.CourierID,
		name:          strings.TrimSpace(p.Name),
		freightCharge: p.FreightCharge,
		codCharge:     p.CODCharge,
		estimatedDays: p.EstimatedDays,
		serviceable:   p.Serviceable,
		surface:       p.Surface,
		hyperlocal:    p.Hyperlocal,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q Quote) Validate() error {
	return q.guard.Validate(ErrQuoteIsNotConstructed)
}

func (q Quote) CourierID() int              { return q.courierID }
func (q Quote) Name() string                { return q.name }
func (q Quote) FreightCharge() kernel.Money { return q.freightCharge }
func (q Quote) CODCharge() kernel.Money     { return q.codCharge }
func (q Quote) EstimatedDays() int          { return q.estimatedDays }
func (q Quote) Serviceable() bool           { return q.serviceable }

// Badges returns the service-type badges shown next to the courier.
func (q Quote) Badges() []Badge {
	var badges []Badge
	if q.surface {
		badges = append(badges, BadgeSurface)
	}
	if q.hyperlocal {
		badges = append(badges, BadgeHyperlocal)
	}
	return badges
}

// Assignment converts the quote into the courier kept on the shipment.
func (q Quote) Assignment() (order.CourierAssignment, error) {
	if err := q.Validate(); err != nil {
		return order.CourierAssignment{}, err
	}
	return order.NewCourierAssignment(q.courierID, q.name, q.estimatedDays, q.freightCharge, q.codCharge)
}
