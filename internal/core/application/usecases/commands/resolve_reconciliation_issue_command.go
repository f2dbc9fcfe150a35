package commands

import (
	"errors"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/guard"
)

var (
	ErrResolveReconciliationIssueCommandIsNotConstructed = errors.New(
		"ResolveReconciliationIssueCommand must be created via NewResolveReconciliationIssueCommand constructor",
	)
)

// ResolveReconciliationIssueCommand marks a reconciliation issue as handled.
type ResolveReconciliationIssueCommand struct {
	issueID kernel.UUID

	guard guard.ConstructorGuard
}

func NewResolveReconciliationIssueCommand(issueID kernel.UUID) (ResolveReconciliationIssueCommand, error) {
	if err := issueID.Validate(); err != nil {
		return ResolveReconciliationIssueCommand{}, err
	}

	return ResolveReconciliationIssueCommand{
		issueID: issueID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ResolveReconciliationIssueCommand) Validate() error {
	return c.guard.Validate(ErrResolveReconciliationIssueCommandIsNotConstructed)
}

func (c ResolveReconciliationIssueCommand) IssueID() kernel.UUID { return c.issueID }
