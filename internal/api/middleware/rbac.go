package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// RBAC lets only the given roles past. It must run behind Auth; a missing
// principal is treated as an authentication failure.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return errAuthFailed()
			}
			if _, ok := allowed[p.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
