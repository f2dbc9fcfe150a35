package ports

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// LogisticsGateway is the logistics provider's API as the core sees it.
// Implementations own authentication, response normalization, retries and
// error classification; every error they return is an *errs.ProviderError
// or an errs.ObjectNotFoundError.
type LogisticsGateway interface {
	// CreateOrder registers the merchant order with the provider. A duplicate
	// registration fails with code errs.ProviderCodeDuplicateOrder.
	CreateOrder(ctx context.Context, req RegisterOrderRequest) (ProviderOrder, error)

	// FindOrder looks the registration up by merchant order id.
	FindOrder(ctx context.Context, orderID kernel.UUID) (ProviderOrder, error)

	// CreateShipment is not idempotent and is never retried by the gateway.
	// Network failures after the request was sent are marked Ambiguous.
	CreateShipment(ctx context.Context, req CreateShipmentRequest) (CreatedShipment, error)

	// GenerateAWB issues the airway bill. CourierID 0 lets the provider pick.
	GenerateAWB(ctx context.Context, shipmentID string, courierID int) (AWB, error)

	// AssignCourier changes the courier after AWB generation and may reissue the AWB.
	AssignCourier(ctx context.Context, shipmentID string, courierID int) (AWB, error)

	// ListCouriers returns the couriers able to serve a registered order.
	ListCouriers(ctx context.Context, query ServiceabilityQuery) ([]courier.Quote, error)

	// GetRates prices a route before an order is registered.
	GetRates(ctx context.Context, query RateQuery) ([]courier.Quote, error)

	SchedulePickup(ctx context.Context, shipmentID string, date time.Time) (PickupConfirmation, error)
	CancelShipment(ctx context.Context, req CancelShipmentRequest) error
	TrackByAWB(ctx context.Context, awbCode string) ([]order.TrackingEvent, error)
	GetLabel(ctx context.Context, shipmentID string) (string, error)
	GetWalletBalance(ctx context.Context) (kernel.Money, error)
}

// RegisterOrderRequest carries the order snapshot sent on registration.
type RegisterOrderRequest struct {
	OrderID        kernel.UUID
	OrderedAt      time.Time
	Customer       order.Customer
	Parcel         order.Parcel
	Payment        order.PaymentStatus
	PickupLocation string
}

// ProviderOrder is the provider's view of a registration.
type ProviderOrder struct {
	ProviderOrderID string
	ShipmentID      string
	AWBCode         string
	Status          string
}

type CreateShipmentRequest struct {
	OrderID         kernel.UUID
	ProviderOrderID string
	PickupLocation  string
	Parcel          order.Parcel
}

type CreatedShipment struct {
	ShipmentID string
}

// AWB is an issued airway bill. Courier is nil when the provider did not
// report the courier with it.
type AWB struct {
	AWBCode string
	Courier *order.CourierAssignment
}

type ServiceabilityQuery struct {
	ProviderOrderID  string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	COD              bool
}

type RateQuery struct {
	PickupPostcode   string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	COD              bool
	DeclaredValue    kernel.Money
}

type PickupConfirmation struct {
	Token string
	Date  time.Time
}

type CancelShipmentRequest struct {
	ProviderOrderID string
	AWBCode         string
}
