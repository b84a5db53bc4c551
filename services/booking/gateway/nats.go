package gateway

import (
	"context"
	"fmt"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	natspkg "github.com/biyahe-app/biyahe/internal/pkg/nats"
	"github.com/biyahe-app/biyahe/services/booking"
)

// bookingGW publishes booking lifecycle events to NATS
type bookingGW struct {
	nats *natspkg.Client
}

// NewBookingGW creates a new NATS-backed booking gateway
func NewBookingGW(natsClient *natspkg.Client) booking.BookingGW {
	return &bookingGW{nats: natsClient}
}

func (g *bookingGW) PublishBookingEvent(ctx context.Context, subject string, event models.BookingEvent) error {
	if err := g.nats.PublishJSON(subject, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
