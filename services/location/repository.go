package location

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// LocationRepo defines the interface for live location storage. The store
// holds exactly one record per driver; writes overwrite, nothing is
// historized.
type LocationRepo interface {
	// SaveLocation overwrites the driver's live record and refreshes
	// the active-drivers projection entry.
	SaveLocation(ctx context.Context, loc *models.DriverLocation) error

	// GetLocation returns the driver's live record, or nil when the
	// driver has no current record.
	GetLocation(ctx context.Context, driverID string) (*models.DriverLocation, error)

	// NearbyDrivers queries the projection for drivers within radiusKm
	// of a point, nearest first, capped at limit.
	NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64, limit int) ([]models.NearbyDriver, error)

	// RemoveDriver deletes the driver's live record and projection
	// entry.
	RemoveDriver(ctx context.Context, driverID string) error
}
