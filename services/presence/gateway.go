package presence

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// PresenceGW defines the interface for publishing presence events
type PresenceGW interface {
	PublishDriverOnline(ctx context.Context, event models.PresenceEvent) error
	PublishDriverOffline(ctx context.Context, event models.PresenceEvent) error
}
