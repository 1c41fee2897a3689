package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safetrack/incident-api/internal/dto"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
	"github.com/safetrack/incident-api/pkg/response"
)

type userService interface {
	List(ctx context.Context) ([]dto.UserSummary, error)
}

// UserHandler exposes the user directory.
type UserHandler struct {
	service userService
}

// NewUserHandler builds a new handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List all users
// @Tags Users
// @Produce json
// @Success 200 {array} dto.UserSummary
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
