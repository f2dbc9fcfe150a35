package queries

import (
	"context"
	"database/sql"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOpenShipmentsQueryHandler reads open shipments straight from the
// orders and shipments tables. The tracking poller sweeps its result.
//
// Example:
//
//	handler := NewGetOpenShipmentsQueryHandler(db)
//	query, _ := NewGetOpenShipmentsQuery(0)
//
//	open, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to list open shipments: %v", err)
//	    return err
//	}
type GetOpenShipmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenShipmentsQueryHandler creates a handler for open shipment queries.
func NewGetOpenShipmentsQueryHandler(db *gorm.DB) GetOpenShipmentsQueryHandler {
	return GetOpenShipmentsQueryHandler{db: db}
}

// Handle returns shipments with an AWB in a trackable stage whose business
// status is not closed, never-synced shipments first, then by oldest sync.
func (h GetOpenShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetOpenShipmentsQuery,
) ([]GetOpenShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	trackable := order.TrackableStages()
	stages := make([]int, 0, len(trackable))
	for _, s := range trackable {
		stages = append(stages, int(s))
	}

	closed := make([]int, 0, 2)
	for _, s := range order.ClosedStatuses() {
		closed = append(closed, int(s))
	}

	sqlQuery := `
		SELECT
			o.id,
			s.awb_code,
			o.stage,
			s.last_tracking_sync_at
		FROM orders o
		JOIN shipments s ON s.order_id = o.id
		WHERE s.awb_code <> '' AND o.stage IN ? AND o.status NOT IN ?
		ORDER BY s.last_tracking_sync_at ASC NULLS FIRST, o.id`
	args := []any{stages, closed}
	if query.Limit() > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit())
	}

	rows, err := h.db.WithContext(ctx).Raw(sqlQuery, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shipments := make([]GetOpenShipmentsQueryResponse, 0)
	for rows.Next() {
		var (
			id       uuid.UUID
			awbCode  string
			stage    int
			lastSync sql.NullTime
		)
		if err = rows.Scan(&id, &awbCode, &stage, &lastSync); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		resp := GetOpenShipmentsQueryResponse{
			OrderID: orderID,
			AWBCode: awbCode,
			Stage:   order.Stage(stage),
		}
		if lastSync.Valid {
			resp.LastTrackingSyncAt = lastSync.Time.UTC()
		}
		shipments = append(shipments, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shipments, nil
}
