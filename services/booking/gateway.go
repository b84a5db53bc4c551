package booking

import (
	"context"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// BookingGW publishes one domain event per transition. The state machine
// performs no notification formatting or delivery itself; dispatchers
// subscribe to these events.
type BookingGW interface {
	PublishBookingEvent(ctx context.Context, subject string, event models.BookingEvent) error
}

// AccountGW is the external account/quota collaborator. It owns the daily
// cancellation quota and per-passenger discount percentages.
type AccountGW interface {
	// CancelQuotaExceeded reports whether the passenger has used up
	// today's penalised cancellations.
	CancelQuotaExceeded(ctx context.Context, passengerID string) (bool, error)

	// RecordCancellation charges one penalised cancellation against the
	// passenger's daily quota.
	RecordCancellation(ctx context.Context, passengerID string) error

	// DiscountPercent returns the passenger's registered discount
	// percentage (senior, PWD, student), zero when none.
	DiscountPercent(ctx context.Context, passengerID string) (float64, error)
}
