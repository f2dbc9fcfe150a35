package http

import (
	"errors"
	"net/http"

	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed response.
type Error struct {
	Code       int                  `json:"code"`
	Kind       errs.Kind            `json:"kind"`
	Message    string               `json:"message"`
	RetryLater bool                 `json:"retry_later"`
	Issue      *ReconciliationIssue `json:"issue,omitempty"`
}

// statusOf maps an error kind onto the response status. A reconciliation
// error is accepted: the local change was committed and an issue opened.
func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusUnprocessableEntity
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindPermanent:
		return http.StatusFailedDependency
	case errs.KindTransient:
		return http.StatusServiceUnavailable
	case errs.KindReconciliation:
		return http.StatusAccepted
	case errs.KindCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	return writeErrorWithIssue(c, err, nil)
}

func writeErrorWithIssue(c echo.Context, err error, issue *order.ReconciliationIssue) error {
	kind := errs.KindOf(err)
	status := statusOf(kind)

	message := err.Error()
	var pe *errs.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		message = pe.Message
	}
	if kind == errs.KindInternal {
		c.Logger().Errorf("request failed: %v", err)
		message = "internal error"
	}

	body := Error{
		Code:       status,
		Kind:       kind,
		Message:    message,
		RetryLater: kind.RetryLater(),
	}
	if issue != nil {
		view := issueView(issue)
		body.Issue = &view
	}
	return c.JSON(status, body)
}

func writeProblem(c echo.Context, status int, kind errs.Kind, message string) error {
	return c.JSON(status, Error{Code: status, Kind: kind, Message: message, RetryLater: kind.RetryLater()})
}
