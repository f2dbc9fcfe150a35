package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderParams are the raw checkout values of a new order.
type CreateOrderParams struct {
	OrderID       kernel.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       kernel.AddressParams
	WeightKg      decimal.Decimal
	LengthCm      decimal.Decimal
	BreadthCm     decimal.Decimal
	HeightCm      decimal.Decimal
	DeclaredValue decimal.Decimal
	PaymentStatus order.PaymentStatus
}

// CreateOrderCommand records a completed checkout as a pending order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(params)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct {
	orderID  kernel.UUID
	customer order.Customer
	parcel   order.Parcel
	payment  order.PaymentStatus

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the checkout values and builds the
// customer and parcel snapshots. All validation errors are joined.
func NewCreateOrderCommand(p CreateOrderParams) (CreateOrderCommand, error) {
	address, addrErr := kernel.NewAddress(p.Address)
	customer, customerErr := order.NewCustomer(p.CustomerName, p.CustomerEmail, p.CustomerPhone, address)
	if addrErr != nil {
		customerErr = nil
	}
	declared, moneyErr := kernel.NewMoney(p.DeclaredValue)
	parcel, parcelErr := order.NewParcel(p.WeightKg, p.LengthCm, p.BreadthCm, p.HeightCm, declared)

	if err := errors.Join(
		p.OrderID.Validate(),
		addrErr,
		customerErr,
		moneyErr,
		parcelErr,
		p.PaymentStatus.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		orderID:  p.OrderID,
		customer: customer,
		parcel:   parcel,
		payment:  p.PaymentStatus,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID              { return c.orderID }
func (c CreateOrderCommand) Customer() order.Customer          { return c.customer }
func (c CreateOrderCommand) Parcel() order.Parcel              { return c.parcel }
func (c CreateOrderCommand) PaymentStatus() order.PaymentStatus { return c.payment }
