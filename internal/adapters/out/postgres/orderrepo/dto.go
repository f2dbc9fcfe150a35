// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations. An order and its
// shipment live in two tables keyed by the order id.
package orderrepo

import (
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Status        int          `gorm:"type:smallint;not null"`
	Stage         int          `gorm:"type:smallint;not null;index"`
	FailedStage   int          `gorm:"type:smallint;not null;default:0"`
	PaymentStatus int          `gorm:"type:smallint;not null"`
	Customer      CustomerDTO  `gorm:"embedded;embeddedPrefix:customer_"`
	Parcel        ParcelDTO    `gorm:"embedded;embeddedPrefix:parcel_"`
	Shipment      *ShipmentDTO `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// CustomerDTO is the customer snapshot embedded in the order row.
type CustomerDTO struct {
	Name     string `gorm:"type:varchar(255);not null"`
	Email    string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(32);not null"`
	Line1    string `gorm:"type:varchar(255);not null"`
	Line2    string `gorm:"type:varchar(255)"`
	City     string `gorm:"type:varchar(128);not null"`
	State    string `gorm:"type:varchar(128);not null"`
	Postcode string `gorm:"type:varchar(16);not null"`
	Country  string `gorm:"type:varchar(64);not null"`
}

// ParcelDTO is the parcel snapshot embedded in the order row.
type ParcelDTO struct {
	WeightKg      decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	LengthCm      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	BreadthCm     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	HeightCm      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DeclaredValue decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// ShipmentDTO represents the shipment owned by an order.
type ShipmentDTO struct {
	OrderID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderOrderID string    `gorm:"type:varchar(64)"`
	ShipmentID      string    `gorm:"type:varchar(64)"`
	AWBCode         string    `gorm:"column:awb_code;type:varchar(64);index"`
	PickupLocation  string    `gorm:"type:varchar(128)"`
	TrackingStatus  string    `gorm:"type:varchar(255)"`
	LabelURL        string    `gorm:"type:text"`

	CourierID            *int
	CourierName          string
	CourierEstimatedDays int
	CourierFreight       decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	CourierCOD           decimal.NullDecimal `gorm:"column:courier_cod;type:numeric(12,2)"`
	PreferredCourierID   int                 `gorm:"not null;default:0"`

	PickupDate  *time.Time `gorm:"type:date"`
	PickupToken string     `gorm:"type:varchar(128)"`

	LastTrackingSyncAt *time.Time

	FailureStage   *int
	FailureKind    string `gorm:"type:varchar(32)"`
	FailureMessage string `gorm:"type:text"`
	FailureAt      *time.Time

	UpdatedAt time.Time
}

// TableName specifies the database table name for shipment entities.
func (ShipmentDTO) TableName() string {
	return "shipments"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	c := o.Customer()
	addr := c.Address()
	p := o.Parcel()

	dto := OrderDTO{
		ID:            o.ID().Bytes(),
		Status:        int(o.Status()),
		Stage:         int(o.Stage()),
		FailedStage:   int(o.FailedStage()),
		PaymentStatus: int(o.PaymentStatus()),
		Customer: CustomerDTO{
			Name:     c.Name(),
			Email:    c.Email(),
			Phone:    c.Phone(),
			Line1:    addr.Line1(),
			Line2:    addr.Line2(),
			City:     addr.City(),
			State:    addr.State(),
			Postcode: addr.Postcode(),
			Country:  addr.Country(),
		},
		Parcel: ParcelDTO{
			WeightKg:      p.WeightKg(),
			LengthCm:      p.LengthCm(),
			BreadthCm:     p.BreadthCm(),
			HeightCm:      p.HeightCm(),
			DeclaredValue: p.DeclaredValue().Decimal(),
		},
	}
	if s := o.Shipment(); s != nil {
		shipment := shipmentFromDomain(dto.ID, s)
		dto.Shipment = &shipment
	}
	return dto
}

func shipmentFromDomain(orderID uuid.UUID, s *order.Shipment) ShipmentDTO {
	snap := s.Snapshot()
	dto := ShipmentDTO{
		OrderID:            orderID,
		ProviderOrderID:    snap.ProviderOrderID,
		ShipmentID:         snap.ShipmentID,
		AWBCode:            snap.AWBCode,
		PickupLocation:     snap.PickupLocation,
		TrackingStatus:     snap.TrackingStatus,
		LabelURL:           snap.LabelURL,
		PreferredCourierID: snap.PreferredCourierID,
	}
	if c := snap.Courier; c != nil {
		id := c.ID()
		dto.CourierID = &id
		dto.CourierName = c.Name()
		dto.CourierEstimatedDays = c.EstimatedDays()
		dto.CourierFreight = decimal.NewNullDecimal(c.FreightCharge().Decimal())
		dto.CourierCOD = decimal.NewNullDecimal(c.CODCharge().Decimal())
	}
	if p := snap.Pickup; p != nil {
		date := p.Date()
		dto.PickupDate = &date
		dto.PickupToken = p.Token()
	}
	if !snap.LastTrackingSyncAt.IsZero() {
		at := snap.LastTrackingSyncAt
		dto.LastTrackingSyncAt = &at
	}
	if f := snap.LastFailure; f != nil {
		stage := int(f.Stage)
		at := f.At
		dto.FailureStage = &stage
		dto.FailureKind = f.Kind
		dto.FailureMessage = f.Message
		dto.FailureAt = &at
	}
	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	addr, err := kernel.NewAddress(kernel.AddressParams{
		Line1:    dto.Customer.Line1,
		Line2:    dto.Customer.Line2,
		City:     dto.Customer.City,
		State:    dto.Customer.State,
		Postcode: dto.Customer.Postcode,
		Country:  dto.Customer.Country,
	})
	if err != nil {
		return nil, err
	}
	customer, err := order.NewCustomer(dto.Customer.Name, dto.Customer.Email, dto.Customer.Phone, addr)
	if err != nil {
		return nil, err
	}

	declared, err := kernel.NewMoney(dto.Parcel.DeclaredValue)
	if err != nil {
		return nil, err
	}
	parcel, err := order.NewParcel(dto.Parcel.WeightKg, dto.Parcel.LengthCm, dto.Parcel.BreadthCm, dto.Parcel.HeightCm, declared)
	if err != nil {
		return nil, err
	}

	var shipment *order.Shipment
	if dto.Shipment != nil {
		shipment, err = shipmentToDomain(*dto.Shipment)
		if err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(order.Snapshot{
		ID:            id,
		Status:        order.Status(dto.Status),
		Stage:         order.Stage(dto.Stage),
		FailedStage:   order.Stage(dto.FailedStage),
		PaymentStatus: order.PaymentStatus(dto.PaymentStatus),
		Customer:      customer,
		Parcel:        parcel,
		Shipment:      shipment,
	})
}

func shipmentToDomain(dto ShipmentDTO) (*order.Shipment, error) {
	snap := order.ShipmentSnapshot{
		ProviderOrderID:    dto.ProviderOrderID,
		ShipmentID:         dto.ShipmentID,
		AWBCode:            dto.AWBCode,
		PreferredCourierID: dto.PreferredCourierID,
		PickupLocation:     dto.PickupLocation,
		TrackingStatus:     dto.TrackingStatus,
		LabelURL:           dto.LabelURL,
	}

	if dto.CourierID != nil {
		freight, err := kernel.NewMoney(dto.CourierFreight.Decimal)
		if err != nil {
			return nil, err
		}
		cod, err := kernel.NewMoney(dto.CourierCOD.Decimal)
		if err != nil {
			return nil, err
		}
		c, err := order.NewCourierAssignment(*dto.CourierID, dto.CourierName, dto.CourierEstimatedDays, freight, cod)
		if err != nil {
			return nil, err
		}
		snap.Courier = &c
	}
	if dto.PickupDate != nil {
		p, err := order.NewPickup(*dto.PickupDate, dto.PickupToken)
		if err != nil {
			return nil, err
		}
		snap.Pickup = &p
	}
	if dto.LastTrackingSyncAt != nil {
		snap.LastTrackingSyncAt = dto.LastTrackingSyncAt.UTC()
	}
	if dto.FailureStage != nil {
		f := order.Failure{
			Stage:   order.Stage(*dto.FailureStage),
			Kind:    dto.FailureKind,
			Message: dto.FailureMessage,
		}
		if dto.FailureAt != nil {
			f.At = dto.FailureAt.UTC()
		}
		snap.LastFailure = &f
	}

	return order.RestoreShipment(snap)
}
