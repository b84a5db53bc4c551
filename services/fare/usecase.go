package fare

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// FareUC defines the interface for fare resolution business logic
type FareUC interface {
	// Resolve computes the fare quote for a pickup coordinate and a
	// destination name from the active rule batch. It returns
	// ErrFareUnavailable when no rule matches and ErrOutsideServiceArea
	// when the pickup lies outside every active zone.
	Resolve(ctx context.Context, pickup models.GeoPoint, destination string) (*models.FareQuote, error)

	// ZoneFor resolves the active zone containing a point. When no zone
	// boundaries are configured at all it returns an empty name and no
	// error: absence of a boundary means no restriction.
	ZoneFor(ctx context.Context, point models.GeoPoint) (string, error)

	// ApplyDiscount applies a per-passenger percentage discount to the
	// base amount of a quote. Surge and add-on components are untouched.
	ApplyDiscount(quote *models.FareQuote, percent float64) (*models.FareQuote, error)
}
