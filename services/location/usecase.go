package location

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// LocationUC defines the interface for the location publisher business logic
type LocationUC interface {
	// Publish runs one fix through the throttle and, when it passes,
	// overwrites the driver's live record and announces it on the bus.
	// The returned bool reports whether the fix was published or
	// swallowed. Out-of-range coordinates fail with ErrInvalidFix and
	// never touch the stored record.
	Publish(ctx context.Context, driverID string, fix models.Fix) (bool, error)

	// SetPublishMode switches the driver's publish cadence. Unknown
	// modes fail with ErrUnknownMode.
	SetPublishMode(driverID string, mode models.PublishMode) error

	// PublishInterval returns the loop cadence for the driver's current
	// mode, for the transport layer to pace its reads by.
	PublishInterval(driverID string) int

	// CurrentLocation returns the driver's last published record, or
	// nil when none exists.
	CurrentLocation(ctx context.Context, driverID string) (*models.DriverLocation, error)

	// NearbyDrivers returns up to limit drivers within radiusKm of a
	// point, nearest first, from the active-drivers projection.
	NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64, limit int) ([]models.NearbyDriver, error)

	// ClearDriver drops the driver's live record and projection entry,
	// and forgets the throttle state. Called when the driver goes
	// offline or disconnects.
	ClearDriver(ctx context.Context, driverID string) error
}
