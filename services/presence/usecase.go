package presence

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// PresenceUC defines the interface for driver presence tracking
type PresenceUC interface {
	// GoOnline registers the driver as reachable, arms the disconnect
	// lease and starts the heartbeat loop. It fails with the zone
	// resolver's error when the driver is outside the service area.
	GoOnline(ctx context.Context, driverID string, location models.GeoPoint) error

	// GoOffline stops the heartbeat loop first, so a late renewal cannot
	// resurrect the lease, then writes the terminal offline record.
	GoOffline(ctx context.Context, driverID string) error

	// Touch refreshes the driver's last-seen stamp; called for every
	// message that proves the connection is alive.
	Touch(ctx context.Context, driverID string) error

	// Observe streams presence states for one driver until the context is
	// cancelled. Stale records surface as reconnecting, never as a live
	// position.
	Observe(ctx context.Context, driverID string) (<-chan models.PresenceState, error)

	// Snapshot returns the driver's current presence state
	Snapshot(ctx context.Context, driverID string) (models.PresenceState, error)

	// IsOnline reports whether a driver currently holds a live lease
	IsOnline(ctx context.Context, driverID string) (bool, error)

	// OnlineDriverCount returns the number of drivers holding live leases
	OnlineDriverCount(ctx context.Context) (int, error)
}

// ZoneResolver is the slice of the fare service that presence needs to
// gate going online
type ZoneResolver interface {
	ZoneFor(ctx context.Context, point models.GeoPoint) (string, error)
}
