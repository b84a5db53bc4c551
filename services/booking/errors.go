package booking

import "errors"

var (
	// ErrBookingNotFound means no booking exists with the given id
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRideTaken means another driver won the accept race
	ErrRideTaken = errors.New("ride already taken")

	// ErrInvalidTransition means the booking is not in a legal source
	// state for the requested transition
	ErrInvalidTransition = errors.New("illegal booking state transition")

	// ErrNotAssignedDriver means a driver other than the assigned one
	// attempted a driver-only transition
	ErrNotAssignedDriver = errors.New("driver is not assigned to this booking")

	// ErrDriverNotOnline means an offline driver tried to accept
	ErrDriverNotOnline = errors.New("driver is not online")

	// ErrDriverBusy means the driver already carries an unfinished ride
	// and may not claim another
	ErrDriverBusy = errors.New("driver already has an active ride")

	// ErrCancelNotAllowed means the booking is past the point where the
	// actor may cancel
	ErrCancelNotAllowed = errors.New("cancellation not allowed from this state")

	// ErrCancelQuotaExceeded means the passenger hit the daily cap on
	// penalised cancellations
	ErrCancelQuotaExceeded = errors.New("daily cancellation quota exceeded")

	// ErrInvalidRequest means the booking request failed validation
	// before any write
	ErrInvalidRequest = errors.New("invalid booking request")
)
