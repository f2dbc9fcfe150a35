package errs

import (
	"context"
	"errors"
)

// Kind is the operator-facing classification of an error.
type Kind string

const (
	KindNone           Kind = ""
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindTransient      Kind = "transient_provider"
	KindPermanent      Kind = "permanent_provider"
	KindReconciliation Kind = "reconciliation"
	KindCancelled      Kind = "cancelled"
	KindInternal       Kind = "internal"
)

// KindOf classifies err by walking its wrap chain.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTransitionIsInvalid),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindValidation
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrReconciliation):
		return KindReconciliation
	case errors.Is(err, ErrTransientProvider):
		return KindTransient
	case errors.Is(err, ErrPermanentProvider):
		return KindPermanent
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}

// RetryLater reports whether an operator may simply retry the action later, as
// opposed to needing manual intervention first.
func (k Kind) RetryLater() bool {
	switch k {
	case KindTransient, KindConflict, KindCancelled:
		return true
	default:
		return false
	}
}
