package gateway

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	natspkg "github.com/biyahe-app/biyahe/internal/pkg/nats"
	"github.com/biyahe-app/biyahe/services/presence"
)

// PresenceGW publishes presence events to NATS
type PresenceGW struct {
	natsClient *natspkg.Client
}

// NewPresenceGW creates a new presence gateway
func NewPresenceGW(client *natspkg.Client) presence.PresenceGW {
	return &PresenceGW{natsClient: client}
}

// PublishDriverOnline publishes a driver online event
func (g *PresenceGW) PublishDriverOnline(ctx context.Context, event models.PresenceEvent) error {
	return g.natsClient.PublishJSON(constants.SubjectDriverOnline, event)
}

// PublishDriverOffline publishes a driver offline event
func (g *PresenceGW) PublishDriverOffline(ctx context.Context, event models.PresenceEvent) error {
	return g.natsClient.PublishJSON(constants.SubjectDriverOffline, event)
}
