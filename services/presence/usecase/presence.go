package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/internal/pkg/observability"
	"github.com/biyahe-app/biyahe/internal/pkg/retry"
	"github.com/biyahe-app/biyahe/services/presence"
)

// presenceUC implements the presence.PresenceUC interface
type presenceUC struct {
	cfg   *models.Config
	repo  presence.PresenceRepo
	gw    presence.PresenceGW
	zones presence.ZoneResolver

	mu         sync.Mutex
	heartbeats map[string]context.CancelFunc
}

// NewPresenceUC creates a new presence use case
func NewPresenceUC(cfg *models.Config, repo presence.PresenceRepo, gw presence.PresenceGW, zones presence.ZoneResolver) presence.PresenceUC {
	return &presenceUC{
		cfg:        cfg,
		repo:       repo,
		gw:         gw,
		zones:      zones,
		heartbeats: make(map[string]context.CancelFunc),
	}
}

// GoOnline registers the driver, arms the disconnect lease and starts the
// heartbeat loop. Zone membership is checked first: a driver outside every
// active boundary may not go online, unless no boundaries are configured.
func (uc *presenceUC) GoOnline(ctx context.Context, driverID string, location models.GeoPoint) error {
	zone, err := uc.zones.ZoneFor(ctx, location)
	if err != nil {
		return err
	}

	// The heartbeat loop must outlive the request context. The cancel
	// func is registered under the same lock hold as the already-online
	// check, so concurrent GoOnline calls cannot both pass and leak a
	// heartbeat loop.
	loopCtx, cancel := context.WithCancel(context.Background())
	uc.mu.Lock()
	if _, running := uc.heartbeats[driverID]; running {
		uc.mu.Unlock()
		cancel()
		return presence.ErrAlreadyOnline
	}
	uc.heartbeats[driverID] = cancel
	uc.mu.Unlock()

	now := time.Now()
	if err := uc.repo.ArmLease(ctx, driverID, now); err != nil {
		uc.mu.Lock()
		delete(uc.heartbeats, driverID)
		uc.mu.Unlock()
		cancel()
		return err
	}

	go uc.heartbeatLoop(loopCtx, driverID)

	observability.DriversOnline.Inc()
	logger.Info("Driver online",
		logger.String("driver_id", driverID),
		logger.String("zone", zone))

	if err := uc.gw.PublishDriverOnline(ctx, models.PresenceEvent{
		DriverID:  driverID,
		Online:    true,
		Zone:      zone,
		Timestamp: now,
	}); err != nil {
		logger.Warn("Failed to publish driver online event",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}

	return nil
}

// GoOffline cancels the heartbeat loop before writing the terminal record,
// so the explicit offline can never be overwritten by a late renewal. The
// explicit path and the lease-expiry path converge on the same state:
// online=false with a disconnectedAt stamp.
func (uc *presenceUC) GoOffline(ctx context.Context, driverID string) error {
	uc.mu.Lock()
	cancel, running := uc.heartbeats[driverID]
	if running {
		delete(uc.heartbeats, driverID)
	}
	uc.mu.Unlock()

	if !running {
		return presence.ErrNotOnline
	}
	cancel()

	now := time.Now()
	if err := uc.repo.SetOffline(ctx, driverID, now); err != nil {
		return err
	}

	observability.DriversOnline.Dec()
	logger.Info("Driver offline", logger.String("driver_id", driverID))

	if err := uc.gw.PublishDriverOffline(ctx, models.PresenceEvent{
		DriverID:  driverID,
		Online:    false,
		Timestamp: now,
	}); err != nil {
		logger.Warn("Failed to publish driver offline event",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}

	return nil
}

// heartbeatLoop renews the lease at the configured interval. Failures are
// retried with a short fixed backoff; transient network loss must not flip
// the driver offline prematurely. The loop dies only on cancellation or
// when the lease has already expired under it.
func (uc *presenceUC) heartbeatLoop(ctx context.Context, driverID string) {
	interval := time.Duration(uc.cfg.Presence.HeartbeatIntervalSec) * time.Second
	retryCfg := retry.Config{
		MaxRetries: 3,
		Delay:      time.Duration(uc.cfg.Presence.HeartbeatRetrySec) * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := retry.Fixed(ctx, retryCfg, "presence heartbeat", func(ctx context.Context) error {
				err := uc.repo.RenewLease(ctx, driverID, time.Now())
				if err != nil && !errors.Is(err, presence.ErrLeaseExpired) {
					observability.HeartbeatFailures.Inc()
				}
				return err
			})
			if err == nil {
				continue
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, presence.ErrLeaseExpired) {
				// Readers already saw the disconnect; stop renewing and
				// drop the loop registration
				logger.Warn("Heartbeat found lease expired, stopping loop",
					logger.String("driver_id", driverID))
				uc.dropHeartbeat(driverID)
				observability.DriversOnline.Dec()
				return
			}
			// Exhausted retries; keep the loop alive, the next tick will
			// try again while the lease TTL still has headroom
			logger.Error("Heartbeat exhausted retries",
				logger.String("driver_id", driverID),
				logger.Err(err))
		}
	}
}

func (uc *presenceUC) dropHeartbeat(driverID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if cancel, ok := uc.heartbeats[driverID]; ok {
		delete(uc.heartbeats, driverID)
		cancel()
	}
}

// Touch refreshes last-seen; every location fix or client message that
// arrives proves the connection is alive
func (uc *presenceUC) Touch(ctx context.Context, driverID string) error {
	err := uc.repo.Touch(ctx, driverID, time.Now())
	if errors.Is(err, presence.ErrLeaseExpired) {
		return presence.ErrNotOnline
	}
	return err
}

// Snapshot derives the consumer-facing state from the stored record
func (uc *presenceUC) Snapshot(ctx context.Context, driverID string) (models.PresenceState, error) {
	now := time.Now()

	record, err := uc.repo.GetPresence(ctx, driverID)
	if err != nil {
		// Read errors surface as a disconnected state, not a crash
		logger.Warn("Presence read failed",
			logger.String("driver_id", driverID),
			logger.Err(err))
		return models.PresenceState{State: models.StateDisconnected, At: now}, nil
	}

	return models.PresenceState{
		State:  uc.classify(record, now),
		Record: record,
		At:     now,
	}, nil
}

// classify maps a record to the state a consumer should surface. A record
// past the staleness threshold must not be shown as a live position.
func (uc *presenceUC) classify(record *models.PresenceRecord, now time.Time) models.ConnectionState {
	if record == nil {
		return models.StateDisconnected
	}
	if !record.Online {
		return models.StateOffline
	}

	age := now.Sub(record.LastSeen)
	if age <= time.Duration(uc.cfg.Presence.MaxStalenessSec)*time.Second {
		return models.StateOnline
	}
	if age <= time.Duration(uc.cfg.Presence.LeaseTTLSec)*time.Second {
		return models.StateReconnecting
	}
	return models.StateDisconnected
}

// Observe polls the presence record and streams state changes until the
// context is cancelled
func (uc *presenceUC) Observe(ctx context.Context, driverID string) (<-chan models.PresenceState, error) {
	out := make(chan models.PresenceState, 1)

	first, err := uc.Snapshot(ctx, driverID)
	if err != nil {
		close(out)
		return out, err
	}
	out <- first

	go func() {
		defer close(out)

		poll := time.Duration(uc.cfg.Presence.ObservePollMs) * time.Millisecond
		if poll <= 0 {
			poll = time.Second
		}
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		last := first.State
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				state, err := uc.Snapshot(ctx, driverID)
				if err != nil {
					continue
				}
				if state.State == last {
					continue
				}
				last = state.State
				select {
				case out <- state:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// IsOnline reports whether the driver holds a live lease
func (uc *presenceUC) IsOnline(ctx context.Context, driverID string) (bool, error) {
	record, err := uc.repo.GetPresence(ctx, driverID)
	if err != nil {
		return false, err
	}
	return record != nil && record.Online, nil
}

// OnlineDriverCount returns the number of drivers holding live leases
func (uc *presenceUC) OnlineDriverCount(ctx context.Context) (int, error) {
	drivers, err := uc.repo.OnlineDrivers(ctx)
	if err != nil {
		return 0, err
	}
	return len(drivers), nil
}
