package queries

import (
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/guard"
)

var (
	ErrListReconciliationIssuesQueryIsNotConstructed = errors.New(
		"ListReconciliationIssuesQuery must be created via NewListReconciliationIssuesQuery constructor",
	)
)

// ListReconciliationIssuesQuery lists issues waiting for an operator,
// newest first. Resolved issues are included only on request.
type ListReconciliationIssuesQuery struct {
	includeResolved bool
	guard           guard.ConstructorGuard
}

func NewListReconciliationIssuesQuery(includeResolved bool) ListReconciliationIssuesQuery {
	return ListReconciliationIssuesQuery{includeResolved: includeResolved, guard: guard.NewConstructorGuard()}
}

func (q ListReconciliationIssuesQuery) Validate() error {
	return q.guard.Validate(ErrListReconciliationIssuesQueryIsNotConstructed)
}

func (q ListReconciliationIssuesQuery) IncludeResolved() bool {
	return q.includeResolved
}

type ListReconciliationIssuesQueryResponse struct {
	ID        kernel.UUID
	OrderID   kernel.UUID
	Stage     order.Stage
	Detail    string
	CreatedAt time.Time
	Resolved  bool
}
