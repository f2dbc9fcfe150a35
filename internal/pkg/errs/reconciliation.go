package errs

import (
	"errors"
	"fmt"
)

var ErrReconciliation = errors.New("reconciliation required")

// ReconciliationError reports a disagreement between locally recorded state and the
// state reported by the logistics provider. The local transition has already been
// applied; the error exists so an operator can follow up.
type ReconciliationError struct {
	OrderID string
	Detail  string
	Cause   error
}

func NewReconciliationError(orderID, detail string) *ReconciliationError {
	return &ReconciliationError{
		OrderID: orderID,
		Detail:  detail,
	}
}

func NewReconciliationErrorWithCause(orderID, detail string, cause error) *ReconciliationError {
	return &ReconciliationError{
		OrderID: orderID,
		Detail:  detail,
		Cause:   cause,
	}
}

func (e *ReconciliationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: order %s: %s (cause: %v)", ErrReconciliation, e.OrderID, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: order %s: %s", ErrReconciliation, e.OrderID, e.Detail)
}

func (e *ReconciliationError) Unwrap() error {
	return ErrReconciliation
}
