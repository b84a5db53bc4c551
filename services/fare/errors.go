package fare

import "errors"

var (
	// ErrFareUnavailable means no fare rule matches the origin zone and
	// destination; bookings must never be created un-priced
	ErrFareUnavailable = errors.New("no fare rule for this origin zone and destination")

	// ErrOutsideServiceArea means the pickup lies outside every active zone
	ErrOutsideServiceArea = errors.New("pickup is outside the service area")

	// ErrInvalidDiscount means the discount percentage is out of range
	ErrInvalidDiscount = errors.New("discount percent must be between 0 and 100")

	// ErrInvalidCoordinate means a latitude/longitude pair is out of range
	ErrInvalidCoordinate = errors.New("coordinate out of range")
)
