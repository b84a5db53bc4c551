package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/location"
)

// LocationHandler exposes the read side of the location publisher: the
// dispatch-candidate query and a single driver's live position
type LocationHandler struct {
	uc location.LocationUC
}

// NewLocationHandler creates a new location HTTP handler
func NewLocationHandler(uc location.LocationUC) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// RegisterRoutes registers the location endpoints
func (h *LocationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/drivers/nearby", h.NearbyDrivers)
	e.GET("/v1/drivers/:id/location", h.DriverLocation)
}

func (h *LocationHandler) NearbyDrivers(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat query parameter is required")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lng query parameter is required")
	}

	radiusKm := 2.0
	if raw := c.QueryParam("radius_km"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 50 {
			radiusKm = parsed
		}
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	drivers, err := h.uc.NearbyDrivers(c.Request().Context(), models.GeoPoint{Latitude: lat, Longitude: lng}, radiusKm, limit)
	if err != nil {
		if errors.Is(err, location.ErrInvalidFix) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, drivers)
}

func (h *LocationHandler) DriverLocation(c echo.Context) error {
	loc, err := h.uc.CurrentLocation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if loc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "driver has no live location")
	}
	return c.JSON(http.StatusOK, loc)
}
