// Package httperr defines the error taxonomy shared by services and
// handlers. Services wrap one of the sentinel kinds with fmt.Errorf("%w: ...")
// and handlers translate the chain into a stable JSON envelope.
package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/logging"
)

var (
	ErrValidation     = errors.New("validation")
	ErrAuthentication = errors.New("authentication")
	ErrAuthorization  = errors.New("authorization")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal")
)

type payload struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

func kindOf(err error) (sentinel error, status int) {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrValidation, http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return ErrAuthentication, http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return ErrAuthorization, http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return ErrNotFound, http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict, http.StatusConflict
	default:
		return ErrInternal, http.StatusInternalServerError
	}
}

// Kind returns the machine-readable class of err.
func Kind(err error) string {
	sentinel, _ := kindOf(err)
	return sentinel.Error()
}

// Status maps err onto its HTTP status code.
func Status(err error) int {
	_, status := kindOf(err)
	return status
}

var defaultMessages = map[error]string{
	ErrValidation:     "invalid request",
	ErrAuthentication: "authentication required",
	ErrAuthorization:  "insufficient permissions",
	ErrNotFound:       "not found",
	ErrConflict:       "conflict",
}

// Message extracts the human text of err, without the leading kind tag.
func Message(err error) string {
	sentinel, _ := kindOf(err)
	if sentinel == ErrInternal {
		return "internal server error"
	}
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return defaultMessages[sentinel]
	}
	return msg
}

// Respond writes the error envelope for err. Internal errors are logged with
// the request id and never leak their cause to the caller.
func Respond(c echo.Context, err error) error {
	sentinel, status := kindOf(err)
	rid := c.Response().Header().Get(echo.HeaderXRequestID)

	if sentinel == ErrInternal {
		logging.FromContext(c.Request().Context()).Error("request failed",
			"request_id", rid, "error", err)
	}

	return c.JSON(status, payload{
		Error:     Message(err),
		Kind:      sentinel.Error(),
		RequestID: rid,
	})
}
