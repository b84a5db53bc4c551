package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyahe-app/biyahe/internal/pkg/database"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/location"
)

func setupRepo(t *testing.T) (location.LocationRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := database.NewRedisClientFromAddr(mr.Addr())
	t.Cleanup(func() { client.Close() })

	return NewLocationRepo(client, 60), mr
}

func record(driverID string, lat, lng float64) *models.DriverLocation {
	return &models.DriverLocation{
		DriverID:  driverID,
		Latitude:  lat,
		Longitude: lng,
		Heading:   45,
		SpeedKph:  18,
		Geohash:   "wdw4f8k",
		Online:    true,
		UpdatedAt: time.Now(),
	}
}

func TestSaveAndGetLocation(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLocation(ctx, record("driver-1", 14.4500, 120.9500)))

	loc, err := repo.GetLocation(ctx, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "driver-1", loc.DriverID)
	assert.InDelta(t, 14.4500, loc.Latitude, 1e-9)
	assert.InDelta(t, 120.9500, loc.Longitude, 1e-9)
	assert.Equal(t, "wdw4f8k", loc.Geohash)
}

func TestSaveOverwritesPreviousFix(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLocation(ctx, record("driver-1", 14.4500, 120.9500)))
	require.NoError(t, repo.SaveLocation(ctx, record("driver-1", 14.4600, 120.9600)))

	loc, err := repo.GetLocation(ctx, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, 14.4600, loc.Latitude, 1e-9)
}

func TestGetLocationMissingDriver(t *testing.T) {
	repo, _ := setupRepo(t)

	loc, err := repo.GetLocation(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestLocationAgesOut(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLocation(ctx, record("driver-1", 14.4500, 120.9500)))

	mr.FastForward(61 * time.Second)

	loc, err := repo.GetLocation(ctx, "driver-1")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestNearbyDriversOrderedByDistance(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLocation(ctx, record("near", 14.4505, 120.9505)))
	require.NoError(t, repo.SaveLocation(ctx, record("far", 14.4600, 120.9600)))
	require.NoError(t, repo.SaveLocation(ctx, record("elsewhere", 15.5000, 121.5000)))

	drivers, err := repo.NearbyDrivers(ctx, models.GeoPoint{Latitude: 14.4500, Longitude: 120.9500}, 5, 10)
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "near", drivers[0].DriverID)
	assert.Equal(t, "far", drivers[1].DriverID)
	assert.Less(t, drivers[0].DistanceKm, drivers[1].DistanceKm)
}

func TestRemoveDriverClearsProjection(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLocation(ctx, record("driver-1", 14.4500, 120.9500)))
	require.NoError(t, repo.RemoveDriver(ctx, "driver-1"))

	loc, err := repo.GetLocation(ctx, "driver-1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	drivers, err := repo.NearbyDrivers(ctx, models.GeoPoint{Latitude: 14.4500, Longitude: 120.9500}, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, drivers)
}
