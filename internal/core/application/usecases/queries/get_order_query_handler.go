package queries

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads the operator's view of one order.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

type orderRow struct {
	ID                  uuid.UUID
	Status              int
	Stage               int
	FailedStage         int
	PaymentStatus       int
	CustomerName        string
	CustomerPhone       string
	CustomerCity        string
	CustomerPostcode    string
	ParcelWeightKg      decimal.Decimal
	ParcelDeclaredValue decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time

	HasShipment          bool
	ProviderOrderID      string
	ShipmentID           string
	AWBCode              string `gorm:"column:awb_code"`
	PickupLocation       string
	TrackingStatus       string
	LabelURL             string
	PreferredCourierID   int
	CourierID            *int
	CourierName          string
	CourierEstimatedDays int
	CourierFreight       decimal.NullDecimal
	CourierCOD           decimal.NullDecimal `gorm:"column:courier_cod"`
	PickupDate           *time.Time
	PickupToken          string
	LastTrackingSyncAt   *time.Time
	FailureStage         *int
	FailureKind          string
	FailureMessage       string
	FailureAt            *time.Time
}

// Handle returns an errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)

	var row orderRow
	res := db.Raw(`
		SELECT
			o.id, o.status, o.stage, o.failed_stage, o.payment_status,
			o.customer_name, o.customer_phone, o.customer_city, o.customer_postcode,
			o.parcel_weight_kg, o.parcel_declared_value, o.created_at, o.updated_at,
			s.order_id IS NOT NULL AS has_shipment,
			COALESCE(s.provider_order_id, '') AS provider_order_id,
			COALESCE(s.shipment_id, '') AS shipment_id,
			COALESCE(s.awb_code, '') AS awb_code,
			COALESCE(s.pickup_location, '') AS pickup_location,
			COALESCE(s.tracking_status, '') AS tracking_status,
			COALESCE(s.label_url, '') AS label_url,
			COALESCE(s.preferred_courier_id, 0) AS preferred_courier_id,
			s.courier_id,
			COALESCE(s.courier_name, '') AS courier_name,
			COALESCE(s.courier_estimated_days, 0) AS courier_estimated_days,
			s.courier_freight, s.courier_cod,
			s.pickup_date,
			COALESCE(s.pickup_token, '') AS pickup_token,
			s.last_tracking_sync_at,
			s.failure_stage,
			COALESCE(s.failure_kind, '') AS failure_kind,
			COALESCE(s.failure_message, '') AS failure_message,
			s.failure_at
		FROM orders o
		LEFT JOIN shipments s ON s.order_id = o.id
		WHERE o.id = ?
	`, query.OrderID().Bytes()).Scan(&row)
	if res.Error != nil {
		return GetOrderQueryResponse{}, res.Error
	}
	if res.RowsAffected == 0 {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	resp, err := row.toResponse(query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	rows, err := db.Raw(`
		SELECT occurred_at, status, location
		FROM tracking_events
		WHERE order_id = ?
		ORDER BY occurred_at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	defer rows.Close()

	resp.TrackingEvents = make([]TrackingEventView, 0)
	for rows.Next() {
		var e TrackingEventView
		if err = rows.Scan(&e.OccurredAt, &e.Status, &e.Location); err != nil {
			return GetOrderQueryResponse{}, err
		}
		e.OccurredAt = e.OccurredAt.UTC()
		resp.TrackingEvents = append(resp.TrackingEvents, e)
	}
	if err = rows.Err(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (r orderRow) toResponse(id kernel.UUID) (GetOrderQueryResponse, error) {
	declared, err := kernel.NewMoney(r.ParcelDeclaredValue)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp := GetOrderQueryResponse{
		ID:               id,
		Status:           order.Status(r.Status),
		Stage:            order.Stage(r.Stage),
		FailedStage:      order.Stage(r.FailedStage),
		PaymentStatus:    order.PaymentStatus(r.PaymentStatus),
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		DeliveryCity:     r.CustomerCity,
		DeliveryPostcode: r.CustomerPostcode,
		WeightKg:         r.ParcelWeightKg,
		DeclaredValue:    declared,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if !r.HasShipment {
		return resp, nil
	}

	s := &ShipmentView{
		ProviderOrderID:    r.ProviderOrderID,
		ShipmentID:         r.ShipmentID,
		AWBCode:            r.AWBCode,
		PickupLocation:     r.PickupLocation,
		TrackingStatus:     r.TrackingStatus,
		LabelURL:           r.LabelURL,
		PreferredCourierID: r.PreferredCourierID,
		PickupToken:        r.PickupToken,
		PickupDate:         r.PickupDate,
		LastTrackingSyncAt: r.LastTrackingSyncAt,
	}
	if r.CourierID != nil {
		freight, err := kernel.NewMoney(r.CourierFreight.Decimal)
		if err != nil {
			return GetOrderQueryResponse{}, err
		}
		cod, err := kernel.NewMoney(r.CourierCOD.Decimal)
		if err != nil {
			return GetOrderQueryResponse{}, err
		}
		s.Courier = &CourierView{
			ID:            *r.CourierID,
			Name:          r.CourierName,
			EstimatedDays: r.CourierEstimatedDays,
			FreightCharge: freight,
			CODCharge:     cod,
		}
	}
	if r.FailureStage != nil && r.FailureAt != nil {
		s.LastFailure = &FailureView{
			Stage:   order.Stage(*r.FailureStage),
			Kind:    r.FailureKind,
			Message: r.FailureMessage,
			At:      r.FailureAt.UTC(),
		}
	}
	resp.Shipment = s
	return resp, nil
}
