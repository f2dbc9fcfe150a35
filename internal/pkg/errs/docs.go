// Package errs provides standardized error types for the shipping orchestrator.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: input validation
//   - TransitionIsInvalidError: a state-guard violation in the shipment lifecycle
//   - ObjectNotFoundError: for when an object cannot be found
//   - ConflictError: another transition for the same order is in flight
//   - ProviderError: a classified logistics-provider failure (transient or permanent)
//   - ReconciliationError: local and provider state disagree and need manual review
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// KindOf maps any wrapped error onto the operator-facing Kind, which separates
// "retry later" failures from the ones that need manual intervention.
package errs
