package order

import (
	"strings"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
)

// ReconciliationIssue records a disagreement between local and provider
// state that an operator has to resolve by hand, e.g. a local cancel whose
// remote cancel failed.
type ReconciliationIssue struct {
	id        kernel.UUID
	orderID   kernel.UUID
	stage     Stage
	detail    string
	createdAt time.Time
	resolved  bool
}

// NewReconciliationIssue opens an issue for the order at the given stage.
func NewReconciliationIssue(orderID kernel.UUID, stage Stage, detail string, at time.Time) (*ReconciliationIssue, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(detail) == "" {
		return nil, errs.NewValueIsRequiredError("detail")
	}
	return &ReconciliationIssue{
		id:        kernel.NewUUID(),
		orderID:   orderID,
		stage:     stage,
		detail:    detail,
		createdAt: at.UTC(),
	}, nil
}

// RestoreReconciliationIssue rebuilds an issue from persistence.
func RestoreReconciliationIssue(
	id, orderID kernel.UUID, stage Stage, detail string, createdAt time.Time, resolved bool,
) *ReconciliationIssue {
	return &ReconciliationIssue{
		id:        id,
		orderID:   orderID,
		stage:     stage,
		detail:    detail,
		createdAt: createdAt,
		resolved:  resolved,
	}
}

func (r *ReconciliationIssue) ID() kernel.UUID      { return r.id }
func (r *ReconciliationIssue) OrderID() kernel.UUID { return r.orderID }
func (r *ReconciliationIssue) Stage() Stage         { return r.stage }
func (r *ReconciliationIssue) Detail() string       { return r.detail }
func (r *ReconciliationIssue) CreatedAt() time.Time { return r.createdAt }
func (r *ReconciliationIssue) Resolved() bool       { return r.resolved }

// Resolve marks the issue as handled.
func (r *ReconciliationIssue) Resolve() {
	r.resolved = true
}
