package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"canvass/internal/logging"
	"canvass/internal/model"
)

// MeHandler serves the caller's own identity.
type MeHandler struct {
	log logging.Logger
}

// NewMeHandler creates a handler layer.
func NewMeHandler(log logging.Logger) *MeHandler {
	return &MeHandler{log: log}
}

// MeResponse wraps the caller's identity.
type MeResponse struct {
	User model.Identity `json:"user"`
}

// Me godoc
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /me [get]
func (h *MeHandler) Me(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MeResponse{User: s.Identity.Public()})
}
