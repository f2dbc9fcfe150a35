package errs

import (
	"errors"
	"fmt"
)

var (
	ErrTransientProvider = errors.New("transient provider error")
	ErrPermanentProvider = errors.New("permanent provider error")
)

// Well-known provider failure codes. The logistics adapter maps provider-specific
// responses onto these so the core can react without parsing messages.
const (
	ProviderCodeInsufficientBalance = "insufficient_balance"
	ProviderCodeDuplicateOrder      = "duplicate_order"
	ProviderCodeAlreadyAssigned     = "awb_already_assigned"
	ProviderCodeInvalidAddress      = "invalid_address"
	ProviderCodeUnauthorized        = "unauthorized"
	ProviderCodeRateLimited         = "rate_limited"
	ProviderCodeTimeout             = "timeout"
	ProviderCodeUnavailable         = "unavailable"
	ProviderCodeRejected            = "rejected"
)

// ProviderError is a classified failure returned by the logistics gateway.
//
// Retryable failures (timeouts, 5xx, 429) are retried inside the gateway and only
// surface after the retry budget is exhausted. Permanent failures carry the
// provider's message verbatim. Ambiguous marks a write whose outcome is unknown
// because the connection failed after the request was sent.
type ProviderError struct {
	Operation  string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Ambiguous  bool
	Cause      error
}

func NewTransientProviderError(operation, code, message string, cause error) *ProviderError {
	return &ProviderError{
		Operation: operation,
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

func NewPermanentProviderError(operation, code, message string) *ProviderError {
	return &ProviderError{
		Operation: operation,
		Code:      code,
		Message:   message,
	}
}

func (e *ProviderError) Error() string {
	kind := ErrPermanentProvider
	if e.Retryable {
		kind = ErrTransientProvider
	}
	msg := fmt.Sprintf("%s: %s: %s", kind, e.Operation, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	if e.Retryable {
		return ErrTransientProvider
	}
	return ErrPermanentProvider
}

// HasCode reports whether err is a ProviderError carrying code.
func HasCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}
