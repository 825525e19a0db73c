package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/jwt-auth/internal/core/domain"
	"github.com/99minutos/jwt-auth/internal/core/ports"
	"github.com/99minutos/jwt-auth/internal/pkg/metrics"
)

// unauthorizedMessage is the only body a rejected request ever sees.
const unauthorizedMessage = "not authorized"

type messageResponse struct {
	Message string `json:"message"`
}

// SubjectResolver loads the public profile of a verified token subject.
type SubjectResolver interface {
	Resolve(ctx context.Context, subject string) (*domain.Profile, error)
}

// Auth gates a route behind a bearer token:
//  1. extract "Authorization: Bearer <token>",
//  2. verify signature and expiry,
//  3. resolve the subject to a profile,
//  4. attach the Identity to the request context and continue.
//
// Failures in 1-2, and storage failures in 3, all answer 403 with the same
// body. A subject that no longer exists is not rejected here; it continues
// with a nil Profile (chain RequireProfile to refuse it).
func Auth(verifier ports.TokenVerifier, resolver SubjectResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return deny(c, log, "missing_token", nil)
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				return deny(c, log, "invalid_token", err)
			}

			ctx := c.Request().Context()
			profile, err := resolver.Resolve(ctx, subject)
			result := "allowed"
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				profile = nil
				result = "allowed_unknown_subject"
			case err != nil:
				return deny(c, log, "resolve_failed", err)
			}

			metrics.GateDecisionsTotal.WithLabelValues(result).Inc()
			c.SetRequest(c.Request().WithContext(WithIdentity(ctx, Identity{Subject: subject, Profile: profile})))
			return next(c)
		}
	}
}

// bearerToken parses "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func deny(c echo.Context, log zerolog.Logger, reason string, cause error) error {
	metrics.GateDecisionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(cause).
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("request not authorized")
	return c.JSON(http.StatusForbidden, messageResponse{Message: unauthorizedMessage})
}
