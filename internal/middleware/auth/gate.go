package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/tokens"
)

const ContextKey = "user"

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// Authenticate verifies the bearer token on every request the skipper does
// not exempt and stores the claims under ContextKey.
func Authenticate(v Verifier, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper:     skipper,
		ContextKey:  ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, auth string) (any, error) {
			return v.Verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).With("middleware", "auth.authenticate").
				Warn("token_rejected", "status", http.StatusUnauthorized, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "the user is not authorized").SetInternal(err)
		},
	})
}

// ClaimsFrom returns the verified claims, or nil on a skipped route.
func ClaimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(ContextKey).(*tokens.Claims)
	return claims
}

// Gate is token verification followed by the authorization policy.
func Gate(v Verifier, allow AllowList, policy Policy) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		Authenticate(v, allow.Skipper),
		RequirePolicy(policy, allow.Skipper),
	}
}
