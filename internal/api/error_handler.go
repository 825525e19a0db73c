package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/jwt-auth/internal/api/handler"
	"github.com/99minutos/jwt-auth/internal/core/domain"
)

const genericInternalMessage = "internal server error"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps every domain.ErrorKind to a fixed status and message.
//   - Logs internal errors; their raw message reaches the client only when
//     exposeInternal is set.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c, exposeInternal)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.MessageResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, exposeInternal bool) (int, string) {
	// Echo's own errors (404 from router, 405, ...).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, err.Error()
	case domain.KindEmailTaken:
		return http.StatusForbidden, domain.ErrEmailTaken.Error()
	case domain.KindInvalidCredentials:
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case domain.KindUnauthenticated:
		return http.StatusForbidden, domain.ErrUnauthenticated.Error()
	// domain.KindInternal and anything unclassified.
	default:
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		if exposeInternal {
			return http.StatusInternalServerError, err.Error()
		}
		return http.StatusInternalServerError, genericInternalMessage
	}
}
