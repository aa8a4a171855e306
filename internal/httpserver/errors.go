package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
	"github.com/Skotchmaster/eshop/internal/validation"
)

// ErrorHandler renders every error as a failure envelope. Validation details
// are attached to 400 responses that carry the binding or validation error.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	msg, ok := he.Message.(string)
	if !ok {
		msg = fmt.Sprint(he.Message)
	}

	var details any
	if he.Code == http.StatusBadRequest && he.Internal != nil {
		details = validation.Details(he.Internal)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = transport.Fail(c, he.Code, msg, details)
}

func parseID(c echo.Context, l *slog.Logger, event, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "id is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

func bindValid(c echo.Context, l *slog.Logger, event string, dst any) error {
	if err := c.Bind(dst); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}
	if err := c.Validate(dst); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation failed").SetInternal(err)
	}
	return nil
}

// fail maps a service error to its HTTP status and logs it. notFound is the
// message used for a missing resource.
func fail(l *slog.Logger, event string, err error, notFound string) error {
	var status int
	var msg string
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, notFound
	case errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, fromSentinel(err, service.ErrValidation)
	case errors.Is(err, service.ErrInvalidReference):
		status, msg = http.StatusBadRequest, fromSentinel(err, service.ErrInvalidReference)
	case errors.Is(err, service.ErrUserNotFound):
		status, msg = http.StatusBadRequest, "user not found"
	case errors.Is(err, service.ErrWrongPassword):
		status, msg = http.StatusBadRequest, "password is wrong"
	case errors.Is(err, service.ErrEmailTaken):
		status, msg = http.StatusConflict, "email already registered"
	case errors.Is(err, service.ErrSearchDisabled):
		status, msg = http.StatusServiceUnavailable, "search is not available"
	default:
		l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	l.Warn(event, "status", status, "reason", msg, "error", err)
	return echo.NewHTTPError(status, msg)
}

// fromSentinel drops the wrapping context in front of the sentinel text, so
// "create product: invalid reference: ..." becomes "invalid reference: ...".
func fromSentinel(err, sentinel error) string {
	text := err.Error()
	if i := strings.Index(text, sentinel.Error()); i >= 0 {
		return text[i:]
	}
	return sentinel.Error()
}
