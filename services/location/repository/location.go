package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/database"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/location"
)

// locationRepo stores live driver locations in Redis: a hash per driver
// holding the latest fix, mirrored into a GEO set for nearest-driver
// queries. Both carry a TTL so a vanished driver ages out of the
// projection on its own.
type locationRepo struct {
	redis            *database.RedisClient
	projectionTTLSec int
}

// NewLocationRepo creates a new Redis-backed location repository
func NewLocationRepo(redisClient *database.RedisClient, projectionTTLSec int) location.LocationRepo {
	return &locationRepo{
		redis:            redisClient,
		projectionTTLSec: projectionTTLSec,
	}
}

func (r *locationRepo) SaveLocation(ctx context.Context, loc *models.DriverLocation) error {
	key := fmt.Sprintf(constants.KeyDriverLocation, loc.DriverID)

	fields := map[string]interface{}{
		constants.FieldLatitude:  loc.Latitude,
		constants.FieldLongitude: loc.Longitude,
		constants.FieldHeading:   loc.Heading,
		constants.FieldSpeed:     loc.SpeedKph,
		constants.FieldGeohash:   loc.Geohash,
		constants.FieldTimestamp: loc.UpdatedAt.UnixMilli(),
	}
	if err := r.redis.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("failed to save driver location: %w", err)
	}

	ttl := time.Duration(r.projectionTTLSec) * time.Second
	if err := r.redis.Expire(ctx, key, ttl); err != nil {
		return fmt.Errorf("failed to set location TTL: %w", err)
	}

	if err := r.redis.GeoAdd(ctx, constants.KeyActiveDrivers, loc.Longitude, loc.Latitude, loc.DriverID); err != nil {
		return fmt.Errorf("failed to update active drivers projection: %w", err)
	}

	return nil
}

func (r *locationRepo) GetLocation(ctx context.Context, driverID string) (*models.DriverLocation, error) {
	key := fmt.Sprintf(constants.KeyDriverLocation, driverID)

	fields, err := r.redis.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver location: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	loc := &models.DriverLocation{
		DriverID: driverID,
		Geohash:  fields[constants.FieldGeohash],
		Online:   true,
	}
	loc.Latitude, _ = strconv.ParseFloat(fields[constants.FieldLatitude], 64)
	loc.Longitude, _ = strconv.ParseFloat(fields[constants.FieldLongitude], 64)
	loc.Heading, _ = strconv.ParseFloat(fields[constants.FieldHeading], 64)
	loc.SpeedKph, _ = strconv.ParseFloat(fields[constants.FieldSpeed], 64)
	if ms, err := strconv.ParseInt(fields[constants.FieldTimestamp], 10, 64); err == nil {
		loc.UpdatedAt = time.UnixMilli(ms)
	}

	return loc, nil
}

func (r *locationRepo) NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	results, err := r.redis.GeoRadius(ctx, constants.KeyActiveDrivers, point.Longitude, point.Latitude, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby drivers: %w", err)
	}

	drivers := make([]models.NearbyDriver, 0, len(results))
	for _, result := range results {
		// A projection entry may outlive its live record; verify the
		// driver still has one before reporting it.
		live, err := r.GetLocation(ctx, result.Name)
		if err != nil {
			return nil, err
		}
		if live == nil {
			_ = r.redis.ZRem(ctx, constants.KeyActiveDrivers, result.Name)
			continue
		}
		drivers = append(drivers, models.NearbyDriver{
			DriverID:   result.Name,
			DistanceKm: result.Dist,
			Latitude:   live.Latitude,
			Longitude:  live.Longitude,
		})
	}

	return drivers, nil
}

func (r *locationRepo) RemoveDriver(ctx context.Context, driverID string) error {
	key := fmt.Sprintf(constants.KeyDriverLocation, driverID)
	if err := r.redis.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete driver location: %w", err)
	}
	if err := r.redis.ZRem(ctx, constants.KeyActiveDrivers, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from projection: %w", err)
	}
	return nil
}
