// Package bulk runs one lifecycle operation over a batch of orders with
// bounded parallelism and reports a result per order.
package bulk

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest constructor")

// Kind names the operation applied to every order of a batch.
type Kind string

const (
	KindCreateShipments Kind = "create_shipments"
	KindGenerateAWB     Kind = "generate_awb"
	KindPrintLabels     Kind = "print_labels"
	KindSchedulePickup  Kind = "schedule_pickup"
)

// ParseKind accepts the wire names of the bulk operations.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCreateShipments, KindGenerateAWB, KindPrintLabels, KindSchedulePickup:
		return k, nil
	default:
		return "", errs.NewValueIsInvalidError("kind")
	}
}

// Request is a validated batch. Duplicate order ids are collapsed, keeping
// the first occurrence.
type Request struct {
	kind       Kind
	orderIDs   []kernel.UUID
	pickupDate time.Time

	guard guard.ConstructorGuard
}

// NewRequest validates the kind and the order ids. pickupDate only applies to
// KindSchedulePickup; zero means today.
func NewRequest(kind Kind, orderIDs []kernel.UUID, pickupDate time.Time) (Request, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Request{}, err
	}
	if len(orderIDs) == 0 {
		return Request{}, errs.NewValueIsRequiredError("orderIds")
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	unique := make([]kernel.UUID, 0, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return Request{}, errs.NewValueIsInvalidErrorWithCause("orderIds", err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return Request{
		kind:       kind,
		orderIDs:   unique,
		pickupDate: pickupDate,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (r Request) Validate() error {
	return r.guard.Validate(ErrRequestIsNotConstructed)
}

func (r Request) Kind() Kind              { return r.kind }
func (r Request) PickupDate() time.Time   { return r.pickupDate }
func (r Request) OrderIDs() []kernel.UUID { return append([]kernel.UUID(nil), r.orderIDs...) }
