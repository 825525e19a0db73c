package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/jwt-auth/internal/api/middleware"
)

// currentIdentity returns the identity attached by the Auth middleware.
// Reaching a protected handler without it means the route was wired without
// the gate; treat it like any other unauthenticated request.
func currentIdentity(c echo.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok {
		return middleware.Identity{}, echo.NewHTTPError(http.StatusForbidden, "not authorized")
	}
	return id, nil
}
