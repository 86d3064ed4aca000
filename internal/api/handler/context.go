package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shiftpool/marketplace-api/internal/api/middleware"
)

// currentPrincipal returns the caller attached by the Auth middleware. A
// missing principal means the route was wired without it; fail closed with
// the same response every authentication failure gets.
func currentPrincipal(c echo.Context) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return middleware.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
	}
	return p, nil
}
