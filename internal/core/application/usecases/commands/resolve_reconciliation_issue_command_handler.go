package commands

import (
	"context"
)

// ResolveReconciliationIssueCommandHandler closes reconciliation issues after
// an operator has aligned the order with the provider. Resolving twice is a
// no-op.
type ResolveReconciliationIssueCommandHandler struct {
	lifecycle *Lifecycle
}

func NewResolveReconciliationIssueCommandHandler(lifecycle *Lifecycle) ResolveReconciliationIssueCommandHandler {
	return ResolveReconciliationIssueCommandHandler{lifecycle: lifecycle}
}

func (h *ResolveReconciliationIssueCommandHandler) Handle(ctx context.Context, cmd ResolveReconciliationIssueCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.lifecycle.commit(ctx, func(uow UoW) error {
		issue, err := uow.ReconciliationRepository().Get(ctx, cmd.IssueID())
		if err != nil {
			return err
		}
		if issue.Resolved() {
			return nil
		}
		issue.Resolve()
		return uow.ReconciliationRepository().Update(ctx, issue)
	})
}
