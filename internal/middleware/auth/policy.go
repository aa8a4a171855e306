package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/tokens"
)

var ErrForbidden = errors.New("insufficient rights")

// Policy decides whether verified claims may reach a protected route.
type Policy func(*tokens.Claims) error

// AdminOnly rejects every token that does not carry the admin flag.
func AdminOnly(claims *tokens.Claims) error {
	if claims == nil || !claims.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequirePolicy answers 401 when the policy rejects the request's claims, so
// a non-admin token is treated like a revoked one.
func RequirePolicy(policy Policy, skipper middleware.Skipper) echo.MiddlewareFunc {
	if policy == nil {
		policy = AdminOnly
	}
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			claims := ClaimsFrom(c)
			if err := policy(claims); err != nil {
				l := logging.FromContext(c.Request().Context()).With("middleware", "auth.require_policy")
				if claims != nil {
					l = l.With("user_id", claims.UserID)
				}
				l.Warn("policy_rejected", "status", http.StatusUnauthorized, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "the user is not authorized").SetInternal(err)
			}
			return next(c)
		}
	}
}
