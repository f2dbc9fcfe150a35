package errs

import (
	"errors"
	"fmt"
)

var ErrConflict = errors.New("conflict")

// ConflictError reports that another operation holds the resource identified by Key.
type ConflictError struct {
	Key   string
	Cause error
}

func NewConflictError(key string) *ConflictError {
	return &ConflictError{Key: key}
}

func NewConflictErrorWithCause(key string, cause error) *ConflictError {
	return &ConflictError{
		Key:   key,
		Cause: cause,
	}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s is busy (cause: %v)", ErrConflict, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s: %s is busy", ErrConflict, e.Key)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
