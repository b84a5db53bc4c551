package location

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// LocationGW defines the interface for announcing published fixes to
// downstream consumers (ride tracking, matching).
type LocationGW interface {
	PublishLocationUpdate(ctx context.Context, event models.LocationEvent) error
}
