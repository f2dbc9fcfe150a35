package logistics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"shipping/internal/pkg/errs"
)

// classifyResponse turns a failed envelope into a ProviderError. 4xx are
// permanent with the provider's message kept verbatim; 429 and 5xx are
// retryable. A 502/504 on a non-idempotent call may have been applied
// upstream, so it is also marked ambiguous.
func classifyResponse(operation string, env envelope, idempotent bool) *errs.ProviderError {
	message := env.message
	if message == "" {
		message = http.StatusText(env.statusCode)
	}

	status := env.statusCode
	switch {
	case status == http.StatusTooManyRequests:
		pe := errs.NewTransientProviderError(operation, errs.ProviderCodeRateLimited, message, nil)
		pe.StatusCode = status
		return pe

	case status >= http.StatusInternalServerError:
		code := errs.ProviderCodeUnavailable
		if status == http.StatusGatewayTimeout {
			code = errs.ProviderCodeTimeout
		}
		pe := errs.NewTransientProviderError(operation, code, message, nil)
		pe.StatusCode = status
		pe.Ambiguous = !idempotent && (status == http.StatusGatewayTimeout || status == http.StatusBadGateway)
		return pe

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		pe := errs.NewPermanentProviderError(operation, errs.ProviderCodeUnauthorized, message)
		pe.StatusCode = status
		return pe

	default:
		pe := errs.NewPermanentProviderError(operation, codeFromMessage(status, message), message)
		pe.StatusCode = status
		return pe
	}
}

// codeFromMessage maps the provider's wording onto the well-known codes.
func codeFromMessage(status int, message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "insufficient") || strings.Contains(m, "wallet balance") || strings.Contains(m, "recharge"):
		return errs.ProviderCodeInsufficientBalance
	case strings.Contains(m, "already assigned"):
		return errs.ProviderCodeAlreadyAssigned
	case status == http.StatusConflict || strings.Contains(m, "already exists") || strings.Contains(m, "duplicate"):
		return errs.ProviderCodeDuplicateOrder
	case strings.Contains(m, "pincode") || strings.Contains(m, "postcode") || strings.Contains(m, "address"):
		return errs.ProviderCodeInvalidAddress
	default:
		return errs.ProviderCodeRejected
	}
}

// classifyTransport handles failures where no response was read. Any such
// failure on a non-idempotent call may have reached the provider.
func classifyTransport(ctx context.Context, operation string, err error, idempotent bool) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	code := errs.ProviderCodeUnavailable
	message := "provider unreachable"
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		code = errs.ProviderCodeTimeout
		message = "provider timed out"
	}

	pe := errs.NewTransientProviderError(operation, code, message, err)
	pe.Ambiguous = !idempotent
	return pe
}
