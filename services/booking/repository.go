package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// BookingRepo defines the interface for durable booking storage. Every
// transition method is a conditional write: the UPDATE carries the legal
// source states in its WHERE clause and reports ErrInvalidTransition (or
// ErrRideTaken for the accept race) when no row matched. Bookings are
// never deleted.
type BookingRepo interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID, limit int) ([]models.Booking, error)

	// Accept sets the driver on an unassigned booking. The write
	// requires driver_id IS NULL, which makes concurrent accepts
	// first-writer-wins.
	Accept(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error

	// Transition moves status from any of the given source states,
	// optionally restricted to the assigned driver.
	Transition(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, to models.BookingStatus, driverID *uuid.UUID) error

	// StartRide is the DRIVER_ARRIVED to IN_PROGRESS transition with
	// its pickup timestamp.
	StartRide(ctx context.Context, bookingID, driverID uuid.UUID, at time.Time) error

	// CompleteRide is the IN_PROGRESS to COMPLETED transition, settling
	// the actual fare.
	CompleteRide(ctx context.Context, bookingID, driverID uuid.UUID, actualFare float64, at time.Time) error

	// CancelBooking ends the booking from any of the given source
	// states, stamping who cancelled.
	CancelBooking(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, by models.CancelActor, at time.Time) error

	// ActivateScheduled moves SCHEDULED bookings whose time has come
	// into the given dispatchable state and returns them.
	ActivateScheduled(ctx context.Context, now time.Time, to models.BookingStatus) ([]models.Booking, error)

	// ExpireStale marks unaccepted bookings requested before the cutoff
	// as EXPIRED and returns them.
	ExpireStale(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}
