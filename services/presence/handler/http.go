package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/services/presence"
)

// PresenceHandler exposes the passenger-facing presence snapshot
type PresenceHandler struct {
	uc presence.PresenceUC
}

// NewPresenceHandler creates a new presence HTTP handler
func NewPresenceHandler(uc presence.PresenceUC) *PresenceHandler {
	return &PresenceHandler{uc: uc}
}

// RegisterRoutes registers the presence endpoints
func (h *PresenceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/drivers/:id/presence", h.Snapshot)
}

func (h *PresenceHandler) Snapshot(c echo.Context) error {
	state, err := h.uc.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, state)
}
