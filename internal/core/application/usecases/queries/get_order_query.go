package queries

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery reads one order with its shipment and tracking history.
type GetOrderQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the operator's view of an order.
type GetOrderQueryResponse struct {
	ID               kernel.UUID
	Status           order.Status
	Stage            order.Stage
	FailedStage      order.Stage
	PaymentStatus    order.PaymentStatus
	CustomerName     string
	CustomerPhone    string
	DeliveryCity     string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	DeclaredValue    kernel.Money
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Shipment is nil for pending and rejected orders.
	Shipment       *ShipmentView
	TrackingEvents []TrackingEventView
}

// ShipmentView holds the provider-side progress of an order.
type ShipmentView struct {
	ProviderOrderID    string
	ShipmentID         string
	AWBCode            string
	PickupLocation     string
	TrackingStatus     string
	LabelURL           string
	PreferredCourierID int
	Courier            *CourierView
	PickupDate         *time.Time
	PickupToken        string
	LastTrackingSyncAt *time.Time
	LastFailure        *FailureView
}

type CourierView struct {
	ID            int
	Name          string
	EstimatedDays int
	FreightCharge kernel.Money
	CODCharge     kernel.Money
}

// FailureView is the last failed transition attempt.
type FailureView struct {
	Stage   order.Stage
	Kind    string
	Message string
	At      time.Time
}

type TrackingEventView struct {
	OccurredAt time.Time
	Status     string
	Location   string
}
