package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const welcomeBanner = "welcome to jwt-node"

// MessageResponse is the JSON error envelope: {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message"`
}

// Welcome answers any unmatched GET with a plain-text banner.
func Welcome(c echo.Context) error {
	return c.String(http.StatusOK, welcomeBanner)
}
