package logistics

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var _ ports.LogisticsGateway = (*Client)(nil)

const (
	orderDateLayout = "2006-01-02 15:04"
	pickupLayout    = "2006-01-02"
)

var trackingLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
}

func (cl *Client) CreateOrder(ctx context.Context, req ports.RegisterOrderRequest) (ports.ProviderOrder, error) {
	addr := req.Customer.Address()
	parcel := req.Parcel
	payment := "Prepaid"
	if req.Payment == order.PaymentCOD {
		payment = "COD"
	}

	var resp providerOrderDTO
	err := cl.do(ctx, call{
		operation: "create_order",
		method:    http.MethodPost,
		path:      "/orders/create/adhoc",
		body: createOrderRequest{
			OrderID:             req.OrderID.String(),
			OrderDate:           req.OrderedAt.In(cl.cfg.Location).Format(orderDateLayout),
			PickupLocation:      req.PickupLocation,
			BillingCustomerName: req.Customer.Name(),
			BillingAddress:      addr.Line1(),
			BillingAddress2:     addr.Line2(),
			BillingCity:         addr.City(),
			BillingState:        addr.State(),
			BillingPincode:      addr.Postcode(),
			BillingCountry:      addr.Country(),
			BillingEmail:        req.Customer.Email(),
			BillingPhone:        req.Customer.Phone(),
			ShippingIsBilling:   true,
			PaymentMethod:       payment,
			SubTotal:            parcel.DeclaredValue().Decimal().InexactFloat64(),
			Length:              parcel.LengthCm().InexactFloat64(),
			Breadth:             parcel.BreadthCm().InexactFloat64(),
			Height:              parcel.HeightCm().InexactFloat64(),
			Weight:              parcel.WeightKg().InexactFloat64(),
		},
		// The provider rejects a second order with the same merchant id.
		idempotent: true,
	}, &resp)
	if err != nil {
		return ports.ProviderOrder{}, err
	}
	return resp.toPort(), nil
}

func (cl *Client) FindOrder(ctx context.Context, orderID kernel.UUID) (ports.ProviderOrder, error) {
	var found []providerOrderDTO
	err := cl.do(ctx, call{
		operation:  "find_order",
		method:     http.MethodGet,
		path:       "/orders",
		query:      url.Values{"channel_order_id": {orderID.String()}},
		idempotent: true,
	}, &found)
	if err != nil {
		return ports.ProviderOrder{}, err
	}
	if len(found) == 0 {
		return ports.ProviderOrder{}, errs.NewObjectNotFoundError("provider order", orderID)
	}
	return found[0].toPort(), nil
}

func (d providerOrderDTO) toPort() ports.ProviderOrder {
	return ports.ProviderOrder{
		ProviderOrderID: string(d.OrderID),
		ShipmentID:      string(d.ShipmentID),
		AWBCode:         d.AWBCode,
		Status:          d.Status,
	}
}

// CreateShipment is sent exactly once. A transport failure is reported as
// ambiguous and the caller decides whether the shipment exists.
func (cl *Client) CreateShipment(ctx context.Context, req ports.CreateShipmentRequest) (ports.CreatedShipment, error) {
	var resp createShipmentResponse
	err := cl.do(ctx, call{
		operation: "create_shipment",
		method:    http.MethodPost,
		path:      "/shipments/create",
		body: createShipmentRequest{
			OrderID:        req.ProviderOrderID,
			ChannelOrderID: req.OrderID.String(),
			PickupLocation: req.PickupLocation,
			Length:         req.Parcel.LengthCm().InexactFloat64(),
			Breadth:        req.Parcel.BreadthCm().InexactFloat64(),
			Height:         req.Parcel.HeightCm().InexactFloat64(),
			Weight:         req.Parcel.WeightKg().InexactFloat64(),
		},
		noRetry: true,
	}, &resp)
	if err != nil {
		return ports.CreatedShipment{}, err
	}
	if resp.ShipmentID == "" {
		return ports.CreatedShipment{}, errs.NewPermanentProviderError("create_shipment", errs.ProviderCodeRejected, "provider returned no shipment id")
	}
	return ports.CreatedShipment{ShipmentID: string(resp.ShipmentID)}, nil
}

func (cl *Client) GenerateAWB(ctx context.Context, shipmentID string, courierID int) (ports.AWB, error) {
	return cl.assignAWB(ctx, "generate_awb", "/courier/assign/awb", shipmentID, courierID)
}

func (cl *Client) AssignCourier(ctx context.Context, shipmentID string, courierID int) (ports.AWB, error) {
	return cl.assignAWB(ctx, "assign_courier", "/courier/reassign/awb", shipmentID, courierID)
}

// assignAWB is a charged write. A timeout or gateway error is reported as
// ambiguous and not retried; the caller checks FindOrder for the AWB.
func (cl *Client) assignAWB(ctx context.Context, operation, path, shipmentID string, courierID int) (ports.AWB, error) {
	var resp awbDTO
	err := cl.do(ctx, call{
		operation: operation,
		method:    http.MethodPost,
		path:      path,
		body:      assignAWBRequest{ShipmentID: shipmentID, CourierID: courierID},
	}, &resp)
	if err != nil {
		return ports.AWB{}, err
	}
	if resp.AWBCode == "" {
		return ports.AWB{}, errs.NewPermanentProviderError(operation, errs.ProviderCodeRejected, "provider returned no AWB code")
	}

	awb := ports.AWB{AWBCode: resp.AWBCode}
	if resp.CourierCompanyID > 0 && resp.CourierName != "" {
		assignment, err := order.NewCourierAssignment(
			int(resp.CourierCompanyID),
			resp.CourierName,
			max(int(resp.EstimatedDays), 0),
			money(resp.FreightCharge),
			money(resp.CODCharge),
		)
		if err == nil {
			awb.Courier = &assignment
		}
	}
	return awb, nil
}

func (cl *Client) ListCouriers(ctx context.Context, query ports.ServiceabilityQuery) ([]courier.Quote, error) {
	return cl.serviceability(ctx, "list_couriers", url.Values{
		"order_id":          {query.ProviderOrderID},
		"delivery_postcode": {query.DeliveryPostcode},
		"weight":            {query.WeightKg.String()},
		"cod":               {boolFlag(query.COD)},
	})
}

func (cl *Client) GetRates(ctx context.Context, query ports.RateQuery) ([]courier.Quote, error) {
	return cl.serviceability(ctx, "get_rates", url.Values{
		"pickup_postcode":   {query.PickupPostcode},
		"delivery_postcode": {query.DeliveryPostcode},
		"weight":            {query.WeightKg.String()},
		"cod":               {boolFlag(query.COD)},
		"declared_value":    {query.DeclaredValue.String()},
	})
}

func (cl *Client) serviceability(ctx context.Context, operation string, query url.Values) ([]courier.Quote, error) {
	var resp serviceabilityResponse
	err := cl.do(ctx, call{
		operation:  operation,
		method:     http.MethodGet,
		path:       "/courier/serviceability",
		query:      query,
		idempotent: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	quotes := make([]courier.Quote, 0, len(resp.AvailableCourierCompanies))
	for _, c := range resp.AvailableCourierCompanies {
		q, err := courier.NewQuote(courier.QuoteParams{
			CourierID:     int(c.CourierCompanyID),
			Name:          c.CourierName,
			FreightCharge: money(c.FreightCharge),
			CODCharge:     money(c.CODCharges),
			EstimatedDays: max(int(c.EstimatedDays), 0),
			Serviceable:   c.Blocked == 0,
			Surface:       c.IsSurface,
			Hyperlocal:    c.IsHyperlocal,
		})
		if err != nil {
			cl.logger.WarnContext(ctx, "Skipping malformed courier quote",
				"operation", operation, "courier_id", int(c.CourierCompanyID), "error", err)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (cl *Client) SchedulePickup(ctx context.Context, shipmentID string, date time.Time) (ports.PickupConfirmation, error) {
	var resp pickupResponse
	err := cl.do(ctx, call{
		operation: "schedule_pickup",
		method:    http.MethodPost,
		path:      "/courier/generate/pickup",
		body: pickupRequest{
			ShipmentID: []string{shipmentID},
			PickupDate: date.Format(pickupLayout),
		},
		idempotent: true,
	}, &resp)
	if err != nil {
		return ports.PickupConfirmation{}, err
	}
	if resp.PickupTokenNumber == "" {
		return ports.PickupConfirmation{}, errs.NewPermanentProviderError("schedule_pickup", errs.ProviderCodeRejected, "provider returned no pickup token")
	}

	scheduled := order.PickupDay(date)
	if resp.PickupScheduledDate != "" {
		if day, ok := cl.parseDay(resp.PickupScheduledDate); ok {
			scheduled = day
		}
	}
	return ports.PickupConfirmation{Token: string(resp.PickupTokenNumber), Date: scheduled}, nil
}

func (cl *Client) CancelShipment(ctx context.Context, req ports.CancelShipmentRequest) error {
	body := cancelRequest{IDs: []string{req.ProviderOrderID}}
	if req.AWBCode != "" {
		body.AWBs = []string{req.AWBCode}
	}
	return cl.do(ctx, call{
		operation:  "cancel_shipment",
		method:     http.MethodPost,
		path:       "/orders/cancel",
		body:       body,
		idempotent: true,
	}, nil)
}

// TrackByAWB returns the scans in provider order. Scans without a parseable
// timestamp or status are dropped.
func (cl *Client) TrackByAWB(ctx context.Context, awbCode string) ([]order.TrackingEvent, error) {
	var resp trackingResponse
	err := cl.do(ctx, call{
		operation:  "track_by_awb",
		method:     http.MethodGet,
		path:       "/courier/track/awb/" + url.PathEscape(awbCode),
		idempotent: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	activities := resp.TrackingData.ShipmentTrackActivities
	events := make([]order.TrackingEvent, 0, len(activities))
	for _, a := range activities {
		at, ok := cl.parseTime(a.Date, trackingLayouts)
		if !ok {
			cl.logger.WarnContext(ctx, "Skipping tracking scan with bad timestamp", "awb", awbCode, "date", a.Date)
			continue
		}
		ev, err := order.NewTrackingEvent(at, a.Activity, a.Location)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (cl *Client) GetLabel(ctx context.Context, shipmentID string) (string, error) {
	var resp labelResponse
	err := cl.do(ctx, call{
		operation:  "get_label",
		method:     http.MethodPost,
		path:       "/courier/generate/label",
		body:       labelRequest{ShipmentID: []string{shipmentID}},
		idempotent: true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.LabelURL == "" {
		return "", errs.NewPermanentProviderError("get_label", errs.ProviderCodeRejected, "provider returned no label url")
	}
	return resp.LabelURL, nil
}

func (cl *Client) GetWalletBalance(ctx context.Context) (kernel.Money, error) {
	var resp walletResponse
	err := cl.do(ctx, call{
		operation:  "wallet_balance",
		method:     http.MethodGet,
		path:       "/account/details/wallet-balance",
		idempotent: true,
	}, &resp)
	if err != nil {
		return kernel.Money{}, err
	}
	if resp.BalanceAmount.IsNegative() {
		cl.logger.WarnContext(ctx, "Provider wallet is overdrawn, reporting zero balance",
			"balance", resp.BalanceAmount.String())
	}
	return money(resp.BalanceAmount), nil
}

// parseDay reads the calendar day of a provider date or timestamp as seen in
// the provider's zone. The day is returned as midnight UTC.
func (cl *Client) parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range append([]string{pickupLayout}, trackingLayouts...) {
		if t, err := time.ParseInLocation(layout, s, cl.cfg.Location); err == nil {
			y, m, d := t.In(cl.cfg.Location).Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func (cl *Client) parseTime(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, cl.cfg.Location); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// money clamps provider amounts at zero; charges are never negative.
func money(d decimal.Decimal) kernel.Money {
	m, err := kernel.NewMoney(d.Round(2))
	if err != nil {
		return kernel.ZeroMoney
	}
	return m
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
