package http

import (
	"time"

	"shipping/internal/core/application/bulk"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type NewOrder struct {
	ID       string `json:"id"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Address struct {
		Line1    string `json:"line1"`
		Line2    string `json:"line2"`
		City     string `json:"city"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
	Parcel struct {
		WeightKg      decimal.Decimal `json:"weight_kg"`
		LengthCm      decimal.Decimal `json:"length_cm"`
		BreadthCm     decimal.Decimal `json:"breadth_cm"`
		HeightCm      decimal.Decimal `json:"height_cm"`
		DeclaredValue decimal.Decimal `json:"declared_value"`
	} `json:"parcel"`
	PaymentStatus string `json:"payment_status"`
}

type OrderRef struct {
	ID string `json:"id"`
}

type Reason struct {
	Reason string `json:"reason"`
}

type StatusOverride struct {
	Status string `json:"status"`
}

type ShipmentRequest struct {
	PickupLocation string `json:"pickup_location"`
}

type CourierChoice struct {
	CourierID int `json:"courier_id"`
}

type PickupRequest struct {
	Date string `json:"date"`
}

type BulkRequest struct {
	Kind       string   `json:"kind"`
	OrderIDs   []string `json:"order_ids"`
	PickupDate string   `json:"pickup_date"`
}

type RegisterResult struct {
	ProviderOrderID   string `json:"provider_order_id"`
	AlreadyRegistered bool   `json:"already_registered"`
}

// StageResult reports a single-order transition. Only the fields the
// operation produces are set.
type StageResult struct {
	Stage           string               `json:"stage"`
	ProviderOrderID string               `json:"provider_order_id,omitempty"`
	ShipmentID      string               `json:"shipment_id,omitempty"`
	AWBCode         string               `json:"awb_code,omitempty"`
	Courier         *Courier             `json:"courier,omitempty"`
	Preferred       bool                 `json:"preferred,omitempty"`
	PickupReset     bool                 `json:"pickup_reset,omitempty"`
	PickupToken     string               `json:"pickup_token,omitempty"`
	PickupDate      string               `json:"pickup_date,omitempty"`
	AppliedEvents   int                  `json:"applied_events,omitempty"`
	Issue           *ReconciliationIssue `json:"issue,omitempty"`
}

type Courier struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EstimatedDays int    `json:"estimated_days"`
	FreightCharge string `json:"freight_charge"`
	CODCharge     string `json:"cod_charge"`
}

func courierView(c *order.CourierAssignment) *Courier {
	if c == nil {
		return nil
	}
	return &Courier{
		ID:            c.ID(),
		Name:          c.Name(),
		EstimatedDays: c.EstimatedDays(),
		FreightCharge: c.FreightCharge().String(),
		CODCharge:     c.CODCharge().String(),
	}
}

type RankedCourier struct {
	CourierID     int      `json:"courier_id"`
	Name          string   `json:"name"`
	FreightCharge string   `json:"freight_charge"`
	CODCharge     string   `json:"cod_charge"`
	EstimatedDays int      `json:"estimated_days"`
	Serviceable   bool     `json:"serviceable"`
	Badges        []string `json:"badges"`
	Recommended   bool     `json:"recommended"`
}

func rankedCouriers(ranked []queries.RankedCourier) []RankedCourier {
	out := make([]RankedCourier, len(ranked))
	for i, r := range ranked {
		badges := make([]string, len(r.Badges))
		for j, b := range r.Badges {
			badges[j] = string(b)
		}
		out[i] = RankedCourier{
			CourierID:     r.CourierID,
			Name:          r.Name,
			FreightCharge: r.FreightCharge.String(),
			CODCharge:     r.CODCharge.String(),
			EstimatedDays: r.EstimatedDays,
			Serviceable:   r.Serviceable,
			Badges:        badges,
			Recommended:   r.Recommended,
		}
	}
	return out
}

type ReconciliationIssue struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
	Resolved  bool      `json:"resolved"`
}

func issueView(i *order.ReconciliationIssue) ReconciliationIssue {
	return ReconciliationIssue{
		ID:        i.ID().String(),
		OrderID:   i.OrderID().String(),
		Stage:     i.Stage().String(),
		Detail:    i.Detail(),
		CreatedAt: i.CreatedAt(),
		Resolved:  i.Resolved(),
	}
}

type Wallet struct {
	Amount    string    `json:"amount"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Order struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	Stage            string          `json:"stage"`
	FailedStage      string          `json:"failed_stage,omitempty"`
	PaymentStatus    string          `json:"payment_status"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	DeliveryCity     string          `json:"delivery_city"`
	DeliveryPostcode string          `json:"delivery_postcode"`
	WeightKg         string          `json:"weight_kg"`
	DeclaredValue    string          `json:"declared_value"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Shipment         *Shipment       `json:"shipment,omitempty"`
	TrackingEvents   []TrackingEvent `json:"tracking_events"`
}

type Shipment struct {
	ProviderOrderID    string     `json:"provider_order_id,omitempty"`
	ShipmentID         string     `json:"shipment_id,omitempty"`
	AWBCode            string     `json:"awb_code,omitempty"`
	PickupLocation     string     `json:"pickup_location,omitempty"`
	TrackingStatus     string     `json:"tracking_status,omitempty"`
	LabelURL           string     `json:"label_url,omitempty"`
	PreferredCourierID int        `json:"preferred_courier_id,omitempty"`
	Courier            *Courier   `json:"courier,omitempty"`
	PickupDate         string     `json:"pickup_date,omitempty"`
	PickupToken        string     `json:"pickup_token,omitempty"`
	LastTrackingSyncAt *time.Time `json:"last_tracking_sync_at,omitempty"`
	LastFailure        *Failure   `json:"last_failure,omitempty"`
}

type Failure struct {
	Stage   string    `json:"stage"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type TrackingEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
	Status     string    `json:"status"`
	Location   string    `json:"location,omitempty"`
}

func orderView(o queries.GetOrderQueryResponse) Order {
	view := Order{
		ID:               o.ID.String(),
		Status:           o.Status.String(),
		Stage:            o.Stage.String(),
		PaymentStatus:    o.PaymentStatus.String(),
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		DeliveryCity:     o.DeliveryCity,
		DeliveryPostcode: o.DeliveryPostcode,
		WeightKg:         o.WeightKg.String(),
		DeclaredValue:    o.DeclaredValue.String(),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		TrackingEvents:   make([]TrackingEvent, len(o.TrackingEvents)),
	}
	if o.Stage == order.StageFailed {
		view.FailedStage = o.FailedStage.String()
	}
	for i, ev := range o.TrackingEvents {
		view.TrackingEvents[i] = TrackingEvent{OccurredAt: ev.OccurredAt, Status: ev.Status, Location: ev.Location}
	}

	if s := o.Shipment; s != nil {
		sv := &Shipment{
			ProviderOrderID:    s.ProviderOrderID,
			ShipmentID:         s.ShipmentID,
			AWBCode:            s.AWBCode,
			PickupLocation:     s.PickupLocation,
			TrackingStatus:     s.TrackingStatus,
			LabelURL:           s.LabelURL,
			PreferredCourierID: s.PreferredCourierID,
			PickupToken:        s.PickupToken,
			LastTrackingSyncAt: s.LastTrackingSyncAt,
		}
		if s.Courier != nil {
			sv.Courier = &Courier{
				ID:            s.Courier.ID,
				Name:          s.Courier.Name,
				EstimatedDays: s.Courier.EstimatedDays,
				FreightCharge: s.Courier.FreightCharge.String(),
				CODCharge:     s.Courier.CODCharge.String(),
			}
		}
		if s.PickupDate != nil {
			sv.PickupDate = s.PickupDate.Format(dateLayout)
		}
		if f := s.LastFailure; f != nil {
			sv.LastFailure = &Failure{Stage: f.Stage.String(), Kind: f.Kind, Message: f.Message, At: f.At}
		}
		view.Shipment = sv
	}
	return view
}

type BulkItem struct {
	OrderID   string `json:"order_id"`
	Outcome   string `json:"outcome"`
	ErrorKind string `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type BulkResult struct {
	Kind          string     `json:"kind"`
	Success       bool       `json:"success"`
	Succeeded     int        `json:"succeeded"`
	Failed        int        `json:"failed"`
	Skipped       int        `json:"skipped"`
	NotDispatched int        `json:"not_dispatched"`
	Items         []BulkItem `json:"items"`
}

func bulkView(r bulk.Result) BulkResult {
	items := make([]BulkItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = BulkItem{
			OrderID:   it.OrderID.String(),
			Outcome:   string(it.Outcome),
			ErrorKind: string(it.ErrorKind),
			Message:   it.Message,
			Detail:    it.Detail,
		}
	}
	return BulkResult{
		Kind:          string(r.Kind),
		Success:       r.Success(),
		Succeeded:     r.Succeeded,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		NotDispatched: r.NotDispatched,
		Items:         items,
	}
}
