package presence

import (
	"context"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// PresenceRepo defines the interface for presence record storage. The
// implementation must guarantee that a record whose lease is never renewed
// disappears on its own: that expiry is the server-side disconnect
// guarantee the tracker depends on.
type PresenceRepo interface {
	// ArmLease writes a fresh online record with the lease TTL and adds
	// the driver to the online set
	ArmLease(ctx context.Context, driverID string, now time.Time) error

	// RenewLease refreshes last-seen and re-arms the TTL. It fails if the
	// lease has already expired, so a zombie heartbeat cannot resurrect a
	// driver the readers have seen disconnect.
	RenewLease(ctx context.Context, driverID string, now time.Time) error

	// Touch refreshes last-seen without extending the lease window
	Touch(ctx context.Context, driverID string, now time.Time) error

	// SetOffline replaces the record with a terminal offline record
	// stamped with disconnectedAt, kept for the activity window
	SetOffline(ctx context.Context, driverID string, now time.Time) error

	// GetPresence returns the current record, or nil when the lease has
	// expired and no offline record remains
	GetPresence(ctx context.Context, driverID string) (*models.PresenceRecord, error)

	// OnlineDrivers returns drivers holding live leases, pruning set
	// members whose lease has silently expired
	OnlineDrivers(ctx context.Context) ([]string, error)
}
