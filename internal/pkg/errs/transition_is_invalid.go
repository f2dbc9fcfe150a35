package errs

import (
	"errors"
	"fmt"
)

var ErrTransitionIsInvalid = errors.New("transition is invalid")

// TransitionIsInvalidError reports a state-guard violation: the requested transition
// is not allowed from the aggregate's current state. It is never retried.
type TransitionIsInvalidError struct {
	Transition string
	From       string
	Reason     string
}

func NewTransitionIsInvalidError(transition, from, reason string) *TransitionIsInvalidError {
	return &TransitionIsInvalidError{
		Transition: transition,
		From:       from,
		Reason:     reason,
	}
}

func (e *TransitionIsInvalidError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s from %s (%s)", ErrTransitionIsInvalid, e.Transition, e.From, e.Reason)
	}
	return fmt.Sprintf("%s: %s from %s", ErrTransitionIsInvalid, e.Transition, e.From)
}

func (e *TransitionIsInvalidError) Unwrap() error {
	return ErrTransitionIsInvalid
}
