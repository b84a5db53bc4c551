package usecase

import (
	"context"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/booking"
)

// SweepWorker periodically promotes due SCHEDULED bookings into the
// dispatchable pool and expires bookings that never found a driver. Both
// sweeps are single conditional UPDATEs, so running more than one
// instance is harmless; each booking moves exactly once.
type SweepWorker struct {
	cfg *models.Config
	uc  booking.BookingUC
}

// NewSweepWorker creates a new booking sweep worker
func NewSweepWorker(cfg *models.Config, uc booking.BookingUC) *SweepWorker {
	return &SweepWorker{cfg: cfg, uc: uc}
}

// Run sweeps until the context is cancelled. Sweep errors are logged and
// the loop keeps going; the next tick retries.
func (w *SweepWorker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.Booking.ExpirySweepSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Booking sweep worker started",
		logger.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Booking sweep worker stopped")
			return
		case <-ticker.C:
			if _, err := w.uc.ActivateScheduled(ctx); err != nil {
				logger.Error("Scheduled booking activation failed", logger.Err(err))
			}
			if _, err := w.uc.ExpireStale(ctx); err != nil {
				logger.Error("Booking expiry sweep failed", logger.Err(err))
			}
		}
	}
}
