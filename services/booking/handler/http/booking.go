package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/booking"
	"github.com/biyahe-app/biyahe/services/fare"
)

// BookingHandler exposes the booking state machine over HTTP. Identity
// comes from the X-Passenger-ID / X-Driver-ID headers set by the edge
// gateway; this service does not authenticate.
type BookingHandler struct {
	uc booking.BookingUC
}

// NewBookingHandler creates a new booking HTTP handler
func NewBookingHandler(uc booking.BookingUC) *BookingHandler {
	return &BookingHandler{uc: uc}
}

// RegisterRoutes registers the booking endpoints
func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1/bookings")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/accept", h.Accept)
	g.POST("/:id/arrival", h.AdvanceArrival)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)

	e.GET("/v1/passengers/:id/bookings", h.PassengerBookings)
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PassengerID == "" {
		req.PassengerID = c.Request().Header.Get("X-Passenger-ID")
	}

	b, err := h.uc.CreateBooking(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	b, err := h.uc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Accept(c echo.Context) error {
	bookingID, driverID, err := bookingAndDriver(c)
	if err != nil {
		return err
	}

	b, err := h.uc.Accept(c.Request().Context(), bookingID, driverID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) AdvanceArrival(c echo.Context) error {
	bookingID, driverID, err := bookingAndDriver(c)
	if err != nil {
		return err
	}

	b, err := h.uc.AdvanceArrival(c.Request().Context(), bookingID, driverID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Start(c echo.Context) error {
	bookingID, driverID, err := bookingAndDriver(c)
	if err != nil {
		return err
	}

	b, err := h.uc.Start(c.Request().Context(), bookingID, driverID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Complete(c echo.Context) error {
	bookingID, driverID, err := bookingAndDriver(c)
	if err != nil {
		return err
	}

	var req models.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b, err := h.uc.Complete(c.Request().Context(), bookingID, driverID, &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	actor, actorID, err := cancelActor(c)
	if err != nil {
		return err
	}

	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b, err := h.uc.Cancel(c.Request().Context(), bookingID, actorID, actor, req.Reason)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) PassengerBookings(c echo.Context) error {
	passengerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid passenger id")
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	bookings, err := h.uc.PassengerBookings(c.Request().Context(), passengerID, limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func bookingAndDriver(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	driverID, err := uuid.Parse(c.Request().Header.Get("X-Driver-ID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "X-Driver-ID header is required")
	}
	return bookingID, driverID, nil
}

// cancelActor derives who is cancelling from the identity headers
func cancelActor(c echo.Context) (models.CancelActor, uuid.UUID, error) {
	if raw := c.Request().Header.Get("X-Passenger-ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return models.CancelledByNone, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid X-Passenger-ID header")
		}
		return models.CancelledByPassenger, id, nil
	}
	if raw := c.Request().Header.Get("X-Driver-ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return models.CancelledByNone, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid X-Driver-ID header")
		}
		return models.CancelledByDriver, id, nil
	}
	return models.CancelledByNone, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "identity header is required")
}

// mapError converts the typed domain failures into HTTP status codes the
// client can branch on
func mapError(err error) error {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrRideTaken),
		errors.Is(err, booking.ErrDriverBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrCancelNotAllowed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrNotAssignedDriver):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrDriverNotOnline),
		errors.Is(err, booking.ErrCancelQuotaExceeded):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, fare.ErrInvalidCoordinate),
		errors.Is(err, fare.ErrInvalidDiscount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, fare.ErrFareUnavailable),
		errors.Is(err, fare.ErrOutsideServiceArea):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
