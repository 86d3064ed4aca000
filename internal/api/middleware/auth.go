package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const principalKey = "principal"

// TokenVerifier validates raw access tokens.
type TokenVerifier interface {
	VerifyAccess(raw string) (*ports.TokenClaims, error)
}

// IdentitySource resolves the account behind a verified token.
type IdentitySource interface {
	Resolve(ctx context.Context, userID int64) (*domain.User, error)
}

// Principal is the authenticated caller attached to the request context.
// Role, Email and Verified come from the live account record, not the token,
// so role changes and deactivations do not have to wait for the token to
// expire.
type Principal struct {
	UserID   int64
	Email    string
	Role     domain.Role
	Verified bool
}

// Auth validates the bearer token and loads the caller's account. Every
// rejection uses the same status and message, whichever check failed.
func Auth(tokens TokenVerifier, identities IdentitySource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return errAuthFailed()
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return errAuthFailed()
			}

			claims, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				return errAuthFailed()
			}

			user, err := identities.Resolve(c.Request().Context(), claims.UserID)
			if err != nil || !user.Active {
				return errAuthFailed()
			}

			c.Set(principalKey, Principal{UserID: user.ID, Email: user.Email, Role: user.Role, Verified: user.Verified})
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated caller set by Auth.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func errAuthFailed() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
}
