package gateway

import (
	"context"
	"fmt"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	natspkg "github.com/biyahe-app/biyahe/internal/pkg/nats"
	"github.com/biyahe-app/biyahe/services/location"
)

// locationGW publishes location events to NATS
type locationGW struct {
	nats *natspkg.Client
}

// NewLocationGW creates a new NATS-backed location gateway
func NewLocationGW(natsClient *natspkg.Client) location.LocationGW {
	return &locationGW{nats: natsClient}
}

func (g *locationGW) PublishLocationUpdate(ctx context.Context, event models.LocationEvent) error {
	if err := g.nats.PublishJSON(constants.SubjectLocationUpdate, event); err != nil {
		return fmt.Errorf("failed to publish location update: %w", err)
	}
	return nil
}
