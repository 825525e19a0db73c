package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/jwt-auth/internal/pkg/metrics"
)

// RequireProfile rejects requests whose token subject did not resolve to a
// stored user, i.e. tokens that outlived their account. Chain it after Auth.
func RequireProfile() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c.Request().Context())
			if !ok || id.Profile == nil {
				metrics.GateDecisionsTotal.WithLabelValues("unknown_subject_rejected").Inc()
				return c.JSON(http.StatusForbidden, messageResponse{Message: unauthorizedMessage})
			}
			return next(c)
		}
	}
}
