package transport

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the body of every failed JSON response. Successful responses
// carry the same success/message/requestId keys next to their payload keys.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func requestID(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// OK writes {"success": true, ...payload}. Payload keys named success,
// message or requestId are overwritten.
func OK(c echo.Context, status int, payload echo.Map) error {
	return OKMessage(c, status, "", payload)
}

func OKMessage(c echo.Context, status int, message string, payload echo.Map) error {
	body := make(echo.Map, len(payload)+3)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	if rid := requestID(c); rid != "" {
		body["requestId"] = rid
	}
	return c.JSON(status, body)
}

func Fail(c echo.Context, status int, message string, details any) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Details: details, RequestID: requestID(c)})
}
