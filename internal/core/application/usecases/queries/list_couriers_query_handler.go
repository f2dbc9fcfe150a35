package queries

import (
	"context"

	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// courierRanker orders quotes for display.
type courierRanker interface {
	Rank(quotes []courier.Quote) []courier.Quote
}

// ListCouriersQueryHandler reads the serviceability inputs of an order and
// ranks the provider's answer.
type ListCouriersQueryHandler struct {
	db      *gorm.DB
	gateway ports.LogisticsGateway
	ranker  courierRanker
}

func NewListCouriersQueryHandler(
	db *gorm.DB,
	gateway ports.LogisticsGateway,
	ranker courierRanker,
) ListCouriersQueryHandler {
	return ListCouriersQueryHandler{db: db, gateway: gateway, ranker: ranker}
}

type serviceabilityRow struct {
	Stage            int
	PaymentStatus    int
	CustomerPostcode string
	ParcelWeightKg   decimal.Decimal
	ProviderOrderID  string
}

// Handle fails with a validation error when the order is not registered
// with the provider, and with errs.ObjectNotFoundError when it is unknown.
// An empty result means no courier serves the route.
func (h ListCouriersQueryHandler) Handle(ctx context.Context, query ListCouriersQuery) ([]RankedCourier, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var row serviceabilityRow
	res := h.db.WithContext(ctx).Raw(`
		SELECT
			o.stage,
			o.payment_status,
			o.customer_postcode,
			o.parcel_weight_kg,
			COALESCE(s.provider_order_id, '') AS provider_order_id
		FROM orders o
		LEFT JOIN shipments s ON s.order_id = o.id
		WHERE o.id = ?
	`, query.OrderID().Bytes()).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	stage := order.Stage(row.Stage)
	if row.ProviderOrderID == "" {
		return nil, errs.NewTransitionIsInvalidError("list_couriers", stage.String(), "order is not registered with the provider")
	}
	if stage.IsTerminal() {
		return nil, errs.NewTransitionIsInvalidError("list_couriers", stage.String(), "order is closed")
	}

	quotes, err := h.gateway.ListCouriers(ctx, ports.ServiceabilityQuery{
		ProviderOrderID:  row.ProviderOrderID,
		DeliveryPostcode: row.CustomerPostcode,
		WeightKg:         row.ParcelWeightKg,
		COD:              order.PaymentStatus(row.PaymentStatus).IsCOD(),
	})
	if err != nil {
		return nil, err
	}

	return rankedCouriers(h.ranker.Rank(quotes)), nil
}
