package queries

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListReconciliationIssuesQueryHandler struct {
	db *gorm.DB
}

func NewListReconciliationIssuesQueryHandler(db *gorm.DB) ListReconciliationIssuesQueryHandler {
	return ListReconciliationIssuesQueryHandler{db: db}
}

func (h ListReconciliationIssuesQueryHandler) Handle(
	ctx context.Context,
	query ListReconciliationIssuesQuery,
) ([]ListReconciliationIssuesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, order_id, stage, detail, created_at, resolved
		FROM reconciliation_issues
		WHERE resolved = FALSE OR ?
		ORDER BY created_at DESC, id
	`, query.IncludeResolved()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]ListReconciliationIssuesQueryResponse, 0)
	for rows.Next() {
		var (
			id, orderID uuid.UUID
			stage       int
			issue       ListReconciliationIssuesQueryResponse
			createdAt   time.Time
		)
		if err = rows.Scan(&id, &orderID, &stage, &issue.Detail, &createdAt, &issue.Resolved); err != nil {
			return nil, err
		}

		if issue.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if issue.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		issue.Stage = order.Stage(stage)
		issue.CreatedAt = createdAt.UTC()
		issues = append(issues, issue)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return issues, nil
}
