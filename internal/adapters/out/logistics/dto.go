package logistics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// flexString accepts ids the provider sends either as numbers or strings.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts integers sent as numbers, numeric strings or empty strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	str := strings.TrimSpace(string(s))
	if str == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseFloat(str, 64); err == nil {
		*f = flexInt(int(n))
		return nil
	}

	// Ranges such as "3-5" keep their lower bound.
	end := strings.IndexFunc(str, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		*f = 0
		return nil
	}
	if end > 0 {
		str = str[:end]
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type createOrderRequest struct {
	OrderID             string  `json:"order_id"`
	OrderDate           string  `json:"order_date"`
	PickupLocation      string  `json:"pickup_location"`
	BillingCustomerName string  `json:"billing_customer_name"`
	BillingAddress      string  `json:"billing_address"`
	BillingAddress2     string  `json:"billing_address_2,omitempty"`
	BillingCity         string  `json:"billing_city"`
	BillingState        string  `json:"billing_state"`
	BillingPincode      string  `json:"billing_pincode"`
	BillingCountry      string  `json:"billing_country"`
	BillingEmail        string  `json:"billing_email"`
	BillingPhone        string  `json:"billing_phone"`
	ShippingIsBilling   bool    `json:"shipping_is_billing"`
	PaymentMethod       string  `json:"payment_method"`
	SubTotal            float64 `json:"sub_total"`
	Length              float64 `json:"length"`
	Breadth             float64 `json:"breadth"`
	Height              float64 `json:"height"`
	Weight              float64 `json:"weight"`
}

type providerOrderDTO struct {
	OrderID    flexString `json:"order_id"`
	ShipmentID flexString `json:"shipment_id"`
	AWBCode    string     `json:"awb_code"`
	Status     string     `json:"status"`
}

type createShipmentRequest struct {
	OrderID        string  `json:"order_id"`
	ChannelOrderID string  `json:"channel_order_id"`
	PickupLocation string  `json:"pickup_location"`
	Length         float64 `json:"length"`
	Breadth        float64 `json:"breadth"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
}

type createShipmentResponse struct {
	ShipmentID flexString `json:"shipment_id"`
}

type assignAWBRequest struct {
	ShipmentID string `json:"shipment_id"`
	CourierID  int    `json:"courier_id,omitempty"`
}

type awbDTO struct {
	AWBCode          string          `json:"awb_code"`
	CourierCompanyID flexInt         `json:"courier_company_id"`
	CourierName      string          `json:"courier_name"`
	FreightCharge    decimal.Decimal `json:"freight_charges"`
	CODCharge        decimal.Decimal `json:"cod_charges"`
	EstimatedDays    flexInt         `json:"estimated_delivery_days"`
}

type serviceabilityResponse struct {
	AvailableCourierCompanies []courierDTO `json:"available_courier_companies"`
}

type courierDTO struct {
	CourierCompanyID flexInt         `json:"courier_company_id"`
	CourierName      string          `json:"courier_name"`
	FreightCharge    decimal.Decimal `json:"freight_charge"`
	CODCharges       decimal.Decimal `json:"cod_charges"`
	EstimatedDays    flexInt         `json:"estimated_delivery_days"`
	Blocked          flexInt         `json:"blocked"`
	IsSurface        bool            `json:"is_surface"`
	IsHyperlocal     bool            `json:"is_hyperlocal"`
}

type pickupRequest struct {
	ShipmentID []string `json:"shipment_id"`
	PickupDate string   `json:"pickup_date"`
}

type pickupResponse struct {
	PickupTokenNumber   flexString `json:"pickup_token_number"`
	PickupScheduledDate string     `json:"pickup_scheduled_date"`
}

type cancelRequest struct {
	IDs  []string `json:"ids"`
	AWBs []string `json:"awbs,omitempty"`
}

type trackingResponse struct {
	TrackingData struct {
		ShipmentTrackActivities []trackActivityDTO `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

type trackActivityDTO struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

type labelRequest struct {
	ShipmentID []string `json:"shipment_id"`
}

type labelResponse struct {
	LabelURL string `json:"label_url"`
}

type walletResponse struct {
	BalanceAmount decimal.Decimal `json:"balance_amount"`
}
