// Package guard holds small helpers that protect invariants of value objects,
// commands and queries.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a struct as built through its constructor.
//
// Commands and queries embed a guard so handlers can reject zero values:
//
//	var errCommandNotConstructed = errors.New("CreateShipmentCommand must be created via NewCreateShipmentCommand")
//
//	func (c CreateShipmentCommand) Validate() error {
//	    return c.guard.Validate(errCommandNotConstructed)
//	}
//
// The zero value is "not constructed". A guard is immutable and may be copied freely.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard.
//
// Returns:
//   - nil if the guard was created by NewConstructorGuard
//   - validationError for a zero value guard
//   - ErrDefaultConstructorGuard for a zero value guard when validationError is nil
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
