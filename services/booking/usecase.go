package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// BookingUC defines the interface for the booking state machine. Every
// operation returns a typed failure the caller can branch on; an illegal
// transition never leaves partial state behind.
type BookingUC interface {
	// CreateBooking validates the request, locks a fare quote and
	// persists the booking. Creation fails with fare.ErrFareUnavailable
	// when no rule prices the trip; a booking never exists un-priced.
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)

	// GetBooking returns a booking with its grace-window flag derived
	// at read time.
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)

	// PassengerBookings returns a passenger's bookings, newest first.
	PassengerBookings(ctx context.Context, passengerID uuid.UUID, limit int) ([]models.Booking, error)

	// Accept claims an unassigned booking for an online driver with no
	// ride in flight. First writer wins; a lost race fails with
	// ErrRideTaken and a busy driver with ErrDriverBusy.
	Accept(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error)

	// AdvanceArrival moves the assigned driver one step along
	// ACCEPTED, DRIVER_ARRIVING, DRIVER_ARRIVED. No skipping, no
	// going backward.
	AdvanceArrival(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error)

	// Start begins the ride. Only the assigned driver, only from
	// DRIVER_ARRIVED.
	Start(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error)

	// Complete finishes the ride and settles the actual fare, which
	// defaults to the locked quote unless a discount applies.
	Complete(ctx context.Context, bookingID, driverID uuid.UUID, req *models.CompleteRequest) (*models.Booking, error)

	// Cancel ends the booking on behalf of either party. Passenger
	// cancellations outside the grace window count against the daily
	// quota enforced by the account collaborator.
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actor models.CancelActor, reason string) (*models.Booking, error)

	// ActivateScheduled promotes SCHEDULED bookings whose time has
	// arrived into the dispatchable pool. Returns how many were
	// promoted.
	ActivateScheduled(ctx context.Context) (int, error)

	// ExpireStale sweeps bookings that waited past the expiry timeout
	// without a driver and marks them EXPIRED. Returns how many were
	// expired.
	ExpireStale(ctx context.Context) (int, error)
}

// DriverPresence is the narrow slice of the presence tracker the booking
// state machine needs.
type DriverPresence interface {
	IsOnline(ctx context.Context, driverID string) (bool, error)
	OnlineDriverCount(ctx context.Context) (int, error)
}

// FareResolver is the narrow slice of the fare resolver the booking state
// machine needs.
type FareResolver interface {
	Resolve(ctx context.Context, pickup models.GeoPoint, destination string) (*models.FareQuote, error)
	ApplyDiscount(quote *models.FareQuote, percent float64) (*models.FareQuote, error)
}
