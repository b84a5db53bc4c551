package fare

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// FareRepo defines the interface for zone boundary and fare rule data access
type FareRepo interface {
	// GetActiveZones returns every active zone boundary ordered by name,
	// which fixes the first-match-wins ordering for overlap resolution
	GetActiveZones(ctx context.Context) ([]models.ZoneBoundary, error)

	// GetFareRule returns the active rule for (zone, destination), or nil
	// when no rule exists in the active batch
	GetFareRule(ctx context.Context, zone, destination string) (*models.FareRule, error)
}
