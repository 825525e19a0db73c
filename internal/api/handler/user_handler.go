package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// userResponse wraps the caller's profile. User is null when the token's
// subject no longer exists.
type userResponse struct {
	User *domain.Profile `json:"user"`
}

// Me returns the profile of the authenticated caller.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      403  {object}  MessageResponse
// @Router       /user [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: id.Profile})
}
