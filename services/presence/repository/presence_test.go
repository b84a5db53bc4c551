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
	"github.com/biyahe-app/biyahe/services/presence"
)

func setupRepo(t *testing.T) (presence.PresenceRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := database.NewRedisClientFromAddr(mr.Addr())
	t.Cleanup(func() { client.Close() })

	cfg := &models.Config{}
	cfg.Presence.LeaseTTLSec = 90
	cfg.Presence.ActivityWindowSec = 180

	return NewPresenceRepository(cfg, client), mr
}

func TestArmLeaseAndGetPresence(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.ArmLease(ctx, "driver-1", now))

	record, err := repo.GetPresence(ctx, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.True(t, record.Online)
	assert.Equal(t, "driver-1", record.DriverID)
	assert.WithinDuration(t, now, record.LastSeen, time.Second)
	assert.WithinDuration(t, now, record.ConnectedAt, time.Second)
	assert.Nil(t, record.DisconnectedAt)

	online, err := repo.OnlineDrivers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"driver-1"}, online)
}

// The load-bearing property: a lease that is never renewed expires on the
// server, flipping the driver offline with zero client cooperation.
func TestLeaseExpiryIsTheDisconnectGuarantee(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ArmLease(ctx, "driver-1", time.Now()))

	// Simulate a crashed client: no goOffline, no heartbeat, just time
	mr.FastForward(91 * time.Second)

	record, err := repo.GetPresence(ctx, "driver-1")
	require.NoError(t, err)
	assert.Nil(t, record, "expired lease must leave no online record")

	// A zombie heartbeat cannot resurrect the lease
	err = repo.RenewLease(ctx, "driver-1", time.Now())
	assert.ErrorIs(t, err, presence.ErrLeaseExpired)

	// The online set self-prunes on read
	online, err := repo.OnlineDrivers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestRenewLeaseExtendsTTL(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ArmLease(ctx, "driver-1", time.Now()))

	// 60s in, renew; the lease must survive past the original 90s
	mr.FastForward(60 * time.Second)
	require.NoError(t, repo.RenewLease(ctx, "driver-1", time.Now()))

	mr.FastForward(60 * time.Second)
	record, err := repo.GetPresence(ctx, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Online)
}

func TestSetOfflineWritesTerminalRecord(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	connected := time.Now()
	require.NoError(t, repo.ArmLease(ctx, "driver-1", connected))

	disconnected := connected.Add(5 * time.Minute)
	require.NoError(t, repo.SetOffline(ctx, "driver-1", disconnected))

	record, err := repo.GetPresence(ctx, "driver-1")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.False(t, record.Online)
	require.NotNil(t, record.DisconnectedAt)
	assert.WithinDuration(t, disconnected, *record.DisconnectedAt, time.Second)
	assert.WithinDuration(t, connected, record.ConnectedAt, time.Second)

	online, err := repo.OnlineDrivers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestTouchRefreshesLastSeenOnly(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, repo.ArmLease(ctx, "driver-1", start))

	later := start.Add(10 * time.Second)
	mr.FastForward(10 * time.Second)
	require.NoError(t, repo.Touch(ctx, "driver-1", later))

	record, err := repo.GetPresence(ctx, "driver-1")
	require.NoError(t, err)
	assert.WithinDuration(t, later, record.LastSeen, time.Second)

	// Touch after expiry fails like a renewal would
	mr.FastForward(120 * time.Second)
	err = repo.Touch(ctx, "driver-1", time.Now())
	assert.ErrorIs(t, err, presence.ErrLeaseExpired)
}
