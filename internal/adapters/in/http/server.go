// Package http exposes the operator API over echo. Requests are checked
// against the embedded OpenAPI document before they reach a handler.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shipping/internal/core/application/bulk"
	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/application/wallet"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
)

type (
	orderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	orderAccepter interface {
		Handle(ctx context.Context, cmd commands.AcceptOrderCommand) error
	}
	orderRejecter interface {
		Handle(ctx context.Context, cmd commands.RejectOrderCommand) error
	}
	statusOverrider interface {
		Handle(ctx context.Context, cmd commands.OverrideStatusCommand) error
	}
	orderRegistrar interface {
		Handle(ctx context.Context, cmd commands.RegisterOrderCommand) (commands.RegisterOrderResult, error)
	}
	shipmentCreator interface {
		Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (commands.CreateShipmentResult, error)
	}
	awbGenerator interface {
		Handle(ctx context.Context, cmd commands.GenerateAWBCommand) (commands.GenerateAWBResult, error)
	}
	courierAssigner interface {
		Handle(ctx context.Context, cmd commands.AssignCourierCommand) (commands.AssignCourierResult, error)
	}
	pickupScheduler interface {
		Handle(ctx context.Context, cmd commands.SchedulePickupCommand) (commands.SchedulePickupResult, error)
	}
	labelFetcher interface {
		Handle(ctx context.Context, cmd commands.FetchLabelCommand) (string, error)
	}
	orderCanceller interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) (commands.CancelOrderResult, error)
	}
	trackingRefresher interface {
		Handle(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error)
	}
	issueResolver interface {
		Handle(ctx context.Context, cmd commands.ResolveReconciliationIssueCommand) error
	}

	orderReader interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}
	courierLister interface {
		Handle(ctx context.Context, query queries.ListCouriersQuery) ([]queries.RankedCourier, error)
	}
	rateQuoter interface {
		Handle(ctx context.Context, query queries.GetRatesQuery) ([]queries.RankedCourier, error)
	}
	issueLister interface {
		Handle(ctx context.Context, query queries.ListReconciliationIssuesQuery) ([]queries.ListReconciliationIssuesQueryResponse, error)
	}

	bulkExecutor interface {
		Execute(ctx context.Context, req bulk.Request) (bulk.Result, error)
	}
	walletReader interface {
		Get(ctx context.Context) (wallet.Balance, error)
		ForceRefresh(ctx context.Context) (wallet.Balance, error)
	}
)

// Handlers are the use cases served by the API.
type Handlers struct {
	CreateOrder     orderCreator
	AcceptOrder     orderAccepter
	RejectOrder     orderRejecter
	OverrideStatus  statusOverrider
	RegisterOrder   orderRegistrar
	CreateShipment  shipmentCreator
	GenerateAWB     awbGenerator
	AssignCourier   courierAssigner
	SchedulePickup  pickupScheduler
	FetchLabel      labelFetcher
	CancelOrder     orderCanceller
	RefreshTracking trackingRefresher
	ResolveIssue    issueResolver

	GetOrder     orderReader
	ListCouriers courierLister
	GetRates     rateQuoter
	ListIssues   issueLister

	Bulk   bulkExecutor
	Wallet walletReader
}

// Server maps HTTP requests onto commands and queries.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// Register mounts the API, the health check and the Swagger UI on e.
func (s *Server) Register(ctx context.Context, e *echo.Echo) error {
	doc, err := LoadSpec(ctx)
	if err != nil {
		return err
	}
	if err := registerSwagger(doc); err != nil {
		return err
	}
	router, err := newRouter(doc)
	if err != nil {
		return err
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", swaggerHandler())

	api := e.Group("/api/v1", requestValidator(router))
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/accept", s.AcceptOrder)
	api.POST("/orders/:orderId/reject", s.RejectOrder)
	api.PUT("/orders/:orderId/status", s.OverrideStatus)
	api.POST("/orders/:orderId/register", s.RegisterOrder)
	api.POST("/orders/:orderId/shipment", s.CreateShipment)
	api.POST("/orders/:orderId/awb", s.GenerateAWB)
	api.POST("/orders/:orderId/courier", s.AssignCourier)
	api.GET("/orders/:orderId/couriers", s.ListCouriers)
	api.POST("/orders/:orderId/pickup", s.SchedulePickup)
	api.GET("/orders/:orderId/label", s.FetchLabel)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/tracking/refresh", s.RefreshTracking)
	api.POST("/bulk", s.Bulk)
	api.GET("/rates", s.GetRates)
	api.GET("/wallet", s.GetWalletBalance)
	api.GET("/reconciliation-issues", s.ListReconciliationIssues)
	api.POST("/reconciliation-issues/:issueId/resolve", s.ResolveReconciliationIssue)
	return nil
}

// CreateOrder handles POST /api/v1/orders. A missing id is generated.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}

	orderID := kernel.NewUUID()
	if body.ID != "" {
		id, err := parseUUID("id", body.ID)
		if err != nil {
			return writeError(c, err)
		}
		orderID = id
	}
	payment, err := order.ParsePaymentStatus(body.PaymentStatus)
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		OrderID:       orderID,
		CustomerName:  body.Customer.Name,
		CustomerEmail: body.Customer.Email,
		CustomerPhone: body.Customer.Phone,
		Address: kernel.AddressParams{
			Line1:    body.Address.Line1,
			Line2:    body.Address.Line2,
			City:     body.Address.City,
			State:    body.Address.State,
			Postcode: body.Address.Postcode,
			Country:  body.Address.Country,
		},
		WeightKg:      body.Parcel.WeightKg,
		LengthCm:      body.Parcel.LengthCm,
		BreadthCm:     body.Parcel.BreadthCm,
		HeightCm:      body.Parcel.HeightCm,
		DeclaredValue: body.Parcel.DeclaredValue,
		PaymentStatus: payment,
	})
	if err != nil {
		return writeError(c, err)
	}
	if err := s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, OrderRef{ID: orderID.String()})
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return writeError(c, err)
	}
	resp, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderView(resp))
}

func (s *Server) AcceptOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewAcceptOrderCommand(orderID)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.h.AcceptOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) RejectOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body Reason
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	cmd, err := commands.NewRejectOrderCommand(orderID, body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.h.RejectOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OverrideStatus handles PUT /api/v1/orders/{orderId}/status. It changes the
// merchant-facing status only; the shipment stage is untouched.
func (s *Server) OverrideStatus(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body StatusOverride
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewOverrideStatusCommand(orderID, status)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.h.OverrideStatus.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) RegisterOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewRegisterOrderCommand(orderID)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.RegisterOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, RegisterResult{
		ProviderOrderID:   res.ProviderOrderID,
		AlreadyRegistered: res.AlreadyRegistered,
	})
}

func (s *Server) CreateShipment(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body ShipmentRequest
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	cmd, err := commands.NewCreateShipmentCommand(orderID, body.PickupLocation)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.CreateShipment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, StageResult{
		Stage:           res.Stage.String(),
		ProviderOrderID: res.ProviderOrderID,
		ShipmentID:      res.ShipmentID,
	})
}

// GenerateAWB handles POST /api/v1/orders/{orderId}/awb. Without a
// courier_id the preferred or recommended courier is used.
func (s *Server) GenerateAWB(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body CourierChoice
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	cmd, err := commands.NewGenerateAWBCommand(orderID, body.CourierID)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.GenerateAWB.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, StageResult{
		Stage:   res.Stage.String(),
		AWBCode: res.AWBCode,
		Courier: courierView(res.Courier),
	})
}

func (s *Server) AssignCourier(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body CourierChoice
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	cmd, err := commands.NewAssignCourierCommand(orderID, body.CourierID)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.AssignCourier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, StageResult{
		Stage:       res.Stage.String(),
		AWBCode:     res.AWBCode,
		Preferred:   res.Preferred,
		PickupReset: res.PickupReset,
	})
}

func (s *Server) ListCouriers(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	query, err := queries.NewListCouriersQuery(orderID)
	if err != nil {
		return writeError(c, err)
	}
	ranked, err := s.h.ListCouriers.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rankedCouriers(ranked))
}

// SchedulePickup handles POST /api/v1/orders/{orderId}/pickup. A missing
// date means today.
func (s *Server) SchedulePickup(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body PickupRequest
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	date, err := parseDate("date", body.Date)
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewSchedulePickupCommand(orderID, date)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.SchedulePickup.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	result := StageResult{Stage: res.Stage.String(), PickupToken: res.Token}
	if !res.Date.IsZero() {
		result.PickupDate = res.Date.Format(dateLayout)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) FetchLabel(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewFetchLabelCommand(orderID)
	if err != nil {
		return writeError(c, err)
	}
	url, err := s.h.FetchLabel.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"label_url": url})
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel. When the
// provider refuses the cancellation the order is still cancelled locally and
// the response is 202 with the opened issue.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var body Reason
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	cmd, err := commands.NewCancelOrderCommand(orderID, body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		var rec *errs.ReconciliationError
		if errors.As(err, &rec) {
			return writeErrorWithIssue(c, err, res.Issue)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, StageResult{Stage: res.Stage.String()})
}

func (s *Server) RefreshTracking(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewRefreshTrackingCommand(orderID, false)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.RefreshTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	result := StageResult{Stage: res.Stage.String(), AppliedEvents: res.Applied}
	if res.Issue != nil {
		view := issueView(res.Issue)
		result.Issue = &view
	}
	return c.JSON(http.StatusOK, result)
}

// Bulk handles POST /api/v1/bulk. Per-order failures are reported in the
// body; only an invalid or oversized batch fails the request.
func (s *Server) Bulk(c echo.Context) error {
	var body BulkRequest
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid request body")
	}
	kind, err := bulk.ParseKind(body.Kind)
	if err != nil {
		return writeError(c, err)
	}
	ids := make([]kernel.UUID, 0, len(body.OrderIDs))
	for _, raw := range body.OrderIDs {
		id, err := parseUUID("order_ids", raw)
		if err != nil {
			return writeError(c, err)
		}
		ids = append(ids, id)
	}
	pickupDate, err := parseDate("pickup_date", body.PickupDate)
	if err != nil {
		return writeError(c, err)
	}
	req, err := bulk.NewRequest(kind, ids, pickupDate)
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.h.Bulk.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bulkView(res))
}

// GetRates handles GET /api/v1/rates.
func (s *Server) GetRates(c echo.Context) error {
	var (
		pickup, delivery string
		weight, declared float64
		cod              bool
	)
	params := c.QueryParams()
	for _, b := range []struct {
		name     string
		required bool
		dest     any
	}{
		{"pickup_postcode", true, &pickup},
		{"delivery_postcode", true, &delivery},
		{"weight_kg", true, &weight},
		{"cod", false, &cod},
		{"declared_value", false, &declared},
	} {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, params, b.dest); err != nil {
			return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid query parameter "+b.name)
		}
	}

	value, err := kernel.NewMoney(decimal.NewFromFloat(declared))
	if err != nil {
		return writeError(c, err)
	}
	query, err := queries.NewGetRatesQuery(queries.GetRatesParams{
		PickupPostcode:   pickup,
		DeliveryPostcode: delivery,
		WeightKg:         decimal.NewFromFloat(weight),
		COD:              cod,
		DeclaredValue:    value,
	})
	if err != nil {
		return writeError(c, err)
	}
	ranked, err := s.h.GetRates.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rankedCouriers(ranked))
}

// GetWalletBalance handles GET /api/v1/wallet. The balance is cached;
// force_refresh=true bypasses the cache.
func (s *Server) GetWalletBalance(c echo.Context) error {
	var force bool
	if err := runtime.BindQueryParameter("form", true, false, "force_refresh", c.QueryParams(), &force); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid query parameter force_refresh")
	}

	read := s.h.Wallet.Get
	if force {
		read = s.h.Wallet.ForceRefresh
	}
	b, err := read(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Wallet{Amount: b.Amount.String(), FetchedAt: b.FetchedAt})
}

func (s *Server) ListReconciliationIssues(c echo.Context) error {
	var includeResolved bool
	if err := runtime.BindQueryParameter("form", true, false, "include_resolved", c.QueryParams(), &includeResolved); err != nil {
		return writeProblem(c, http.StatusBadRequest, errs.KindValidation, "invalid query parameter include_resolved")
	}

	issues, err := s.h.ListIssues.Handle(c.Request().Context(), queries.NewListReconciliationIssuesQuery(includeResolved))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]ReconciliationIssue, len(issues))
	for i, issue := range issues {
		out[i] = ReconciliationIssue{
			ID:        issue.ID.String(),
			OrderID:   issue.OrderID.String(),
			Stage:     issue.Stage.String(),
			Detail:    issue.Detail,
			CreatedAt: issue.CreatedAt,
			Resolved:  issue.Resolved,
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) ResolveReconciliationIssue(c echo.Context) error {
	issueID, err := pathUUID(c, "issueId")
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewResolveReconciliationIssueCommand(issueID)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.h.ResolveIssue.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parseUUID(name, raw)
}

func parseUUID(name, s string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(s)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD value; empty yields the zero time.
func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return t, nil
}
