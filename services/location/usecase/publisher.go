package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/internal/pkg/observability"
	"github.com/biyahe-app/biyahe/internal/pkg/retry"
	"github.com/biyahe-app/biyahe/internal/utils"
	"github.com/biyahe-app/biyahe/services/location"
)

// lastPublish is the per-driver throttle state
type lastPublish struct {
	point models.GeoPoint
	at    time.Time
}

// locationUC implements the location.LocationUC interface. A fix only
// goes out when it carries information: the driver moved past the
// movement threshold or the last published fix has gone stale. Everything
// else is swallowed, which keeps a parked tricycle from hammering the
// store with identical coordinates.
type locationUC struct {
	cfg  *models.Config
	repo location.LocationRepo
	gw   location.LocationGW

	mu    sync.Mutex
	last  map[string]lastPublish
	modes map[string]models.PublishMode
}

// NewLocationUC creates a new location publisher use case
func NewLocationUC(cfg *models.Config, repo location.LocationRepo, gw location.LocationGW) location.LocationUC {
	return &locationUC{
		cfg:   cfg,
		repo:  repo,
		gw:    gw,
		last:  make(map[string]lastPublish),
		modes: make(map[string]models.PublishMode),
	}
}

func (uc *locationUC) Publish(ctx context.Context, driverID string, fix models.Fix) (bool, error) {
	if !utils.ValidCoordinate(fix.Latitude, fix.Longitude) {
		observability.LocationPublishes.WithLabelValues("rejected").Inc()
		return false, location.ErrInvalidFix
	}

	at := fix.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	if !uc.shouldPublish(driverID, fix.Point(), at) {
		observability.LocationPublishes.WithLabelValues("throttled").Inc()
		return false, nil
	}

	record := &models.DriverLocation{
		DriverID:  driverID,
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Heading:   fix.Heading,
		SpeedKph:  fix.SpeedKph,
		Geohash:   utils.EncodePoint(fix.Point()),
		Online:    true,
		UpdatedAt: at,
	}
	// A publish overwrites the whole record, so retrying a transient
	// store failure cannot double-apply
	saveCfg := retry.Config{MaxRetries: 2, Delay: 200 * time.Millisecond}
	err := retry.Fixed(ctx, saveCfg, "save driver location", func(ctx context.Context) error {
		return uc.repo.SaveLocation(ctx, record)
	})
	if err != nil {
		return false, err
	}

	uc.mu.Lock()
	uc.last[driverID] = lastPublish{point: fix.Point(), at: at}
	uc.mu.Unlock()

	observability.LocationPublishes.WithLabelValues("published").Inc()

	if err := uc.gw.PublishLocationUpdate(ctx, models.LocationEvent{
		DriverID:  driverID,
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Heading:   fix.Heading,
		SpeedKph:  fix.SpeedKph,
		Timestamp: at,
	}); err != nil {
		logger.Warn("Failed to publish location event",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}

	return true, nil
}

// shouldPublish applies the throttle rule: first fix always goes out,
// after that a fix passes on movement past the threshold or on staleness
// of the last published fix
func (uc *locationUC) shouldPublish(driverID string, point models.GeoPoint, at time.Time) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	prev, ok := uc.last[driverID]
	if !ok {
		return true
	}

	moved := utils.HaversineDistanceMeters(prev.point, point)
	if moved > uc.cfg.Location.MovementThresholdM {
		return true
	}

	staleness := time.Duration(uc.cfg.Location.StalenessThresholdMs) * time.Millisecond
	return at.Sub(prev.at) > staleness
}

func (uc *locationUC) SetPublishMode(driverID string, mode models.PublishMode) error {
	switch mode {
	case models.PublishModeDefault, models.PublishModeHighPrecision, models.PublishModeBatterySave:
	default:
		return location.ErrUnknownMode
	}

	uc.mu.Lock()
	uc.modes[driverID] = mode
	uc.mu.Unlock()

	logger.Info("Publish mode changed",
		logger.String("driver_id", driverID),
		logger.String("mode", string(mode)))
	return nil
}

func (uc *locationUC) PublishInterval(driverID string) int {
	uc.mu.Lock()
	mode := uc.modes[driverID]
	uc.mu.Unlock()

	switch mode {
	case models.PublishModeHighPrecision:
		return uc.cfg.Location.HighPrecisionMs
	case models.PublishModeBatterySave:
		return uc.cfg.Location.BatterySaveMs
	default:
		return uc.cfg.Location.DefaultIntervalMs
	}
}

func (uc *locationUC) CurrentLocation(ctx context.Context, driverID string) (*models.DriverLocation, error) {
	return uc.repo.GetLocation(ctx, driverID)
}

func (uc *locationUC) NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	if !utils.ValidCoordinate(point.Latitude, point.Longitude) {
		return nil, location.ErrInvalidFix
	}
	return uc.repo.NearbyDrivers(ctx, point, radiusKm, limit)
}

func (uc *locationUC) ClearDriver(ctx context.Context, driverID string) error {
	uc.mu.Lock()
	delete(uc.last, driverID)
	delete(uc.modes, driverID)
	uc.mu.Unlock()

	return uc.repo.RemoveDriver(ctx, driverID)
}
