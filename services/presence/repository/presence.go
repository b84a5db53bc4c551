package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/database"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/presence"
)

type presenceRepo struct {
	cfg         *models.Config
	redisClient *database.RedisClient
}

// NewPresenceRepository creates a new presence repository over Redis.
//
// The record for an online driver carries a TTL equal to the lease
// duration. Heartbeats re-arm the TTL; if the client dies, crashes or
// loses its network, nothing renews the lease and the key expires on the
// server. That expiry is the disconnect guarantee: readers observe the
// driver offline without any cooperation from the dead client.
func NewPresenceRepository(cfg *models.Config, redisClient *database.RedisClient) presence.PresenceRepo {
	return &presenceRepo{cfg: cfg, redisClient: redisClient}
}

func (r *presenceRepo) leaseTTL() time.Duration {
	return time.Duration(r.cfg.Presence.LeaseTTLSec) * time.Second
}

func (r *presenceRepo) activityWindow() time.Duration {
	return time.Duration(r.cfg.Presence.ActivityWindowSec) * time.Second
}

// ArmLease writes a fresh online record under the lease TTL
func (r *presenceRepo) ArmLease(ctx context.Context, driverID string, now time.Time) error {
	key := fmt.Sprintf(constants.KeyDriverPresence, driverID)

	record := map[string]interface{}{
		constants.FieldOnline:      "1",
		constants.FieldLastSeen:    strconv.FormatInt(now.UnixMilli(), 10),
		constants.FieldConnectedAt: strconv.FormatInt(now.UnixMilli(), 10),
	}

	if err := r.redisClient.HSet(ctx, key, record); err != nil {
		return fmt.Errorf("failed to write presence record: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, r.leaseTTL()); err != nil {
		return fmt.Errorf("failed to arm presence lease: %w", err)
	}

	if err := r.redisClient.SAdd(ctx, constants.KeyOnlineDrivers, driverID); err != nil {
		return fmt.Errorf("failed to add driver to online set: %w", err)
	}

	return nil
}

// RenewLease refreshes last-seen and re-arms the TTL. A renewal against an
// expired lease fails: the reader-visible disconnect must win over a
// zombie heartbeat.
func (r *presenceRepo) RenewLease(ctx context.Context, driverID string, now time.Time) error {
	key := fmt.Sprintf(constants.KeyDriverPresence, driverID)

	exists, err := r.redisClient.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check presence lease: %w", err)
	}
	if !exists {
		return presence.ErrLeaseExpired
	}

	if err := r.redisClient.HSet(ctx, key, map[string]interface{}{
		constants.FieldLastSeen: strconv.FormatInt(now.UnixMilli(), 10),
	}); err != nil {
		return fmt.Errorf("failed to refresh presence record: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, r.leaseTTL()); err != nil {
		return fmt.Errorf("failed to renew presence lease: %w", err)
	}

	return nil
}

// Touch refreshes last-seen only; the lease window is the heartbeat's job
func (r *presenceRepo) Touch(ctx context.Context, driverID string, now time.Time) error {
	key := fmt.Sprintf(constants.KeyDriverPresence, driverID)

	exists, err := r.redisClient.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check presence lease: %w", err)
	}
	if !exists {
		return presence.ErrLeaseExpired
	}

	return r.redisClient.HSet(ctx, key, map[string]interface{}{
		constants.FieldLastSeen: strconv.FormatInt(now.UnixMilli(), 10),
	})
}

// SetOffline replaces the record with a terminal offline record. The
// record outlives the lease by the activity window so "was this driver
// active at all today" queries still resolve.
func (r *presenceRepo) SetOffline(ctx context.Context, driverID string, now time.Time) error {
	key := fmt.Sprintf(constants.KeyDriverPresence, driverID)

	// Preserve connectedAt from the live record when it still exists
	existing, err := r.redisClient.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read presence record: %w", err)
	}

	record := map[string]interface{}{
		constants.FieldOnline:         "0",
		constants.FieldLastSeen:       strconv.FormatInt(now.UnixMilli(), 10),
		constants.FieldDisconnectedAt: strconv.FormatInt(now.UnixMilli(), 10),
	}
	if connectedAt, ok := existing[constants.FieldConnectedAt]; ok {
		record[constants.FieldConnectedAt] = connectedAt
	}

	if err := r.redisClient.HSet(ctx, key, record); err != nil {
		return fmt.Errorf("failed to write offline record: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, r.activityWindow()); err != nil {
		return fmt.Errorf("failed to set offline record TTL: %w", err)
	}

	if err := r.redisClient.SRem(ctx, constants.KeyOnlineDrivers, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from online set: %w", err)
	}

	return nil
}

// GetPresence returns the current record, or nil when no record remains
func (r *presenceRepo) GetPresence(ctx context.Context, driverID string) (*models.PresenceRecord, error) {
	key := fmt.Sprintf(constants.KeyDriverPresence, driverID)

	fields, err := r.redisClient.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read presence record: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record := &models.PresenceRecord{
		DriverID: driverID,
		Online:   fields[constants.FieldOnline] == "1",
	}
	if ms, err := strconv.ParseInt(fields[constants.FieldLastSeen], 10, 64); err == nil {
		record.LastSeen = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(fields[constants.FieldConnectedAt], 10, 64); err == nil {
		record.ConnectedAt = time.UnixMilli(ms)
	}
	if raw, ok := fields[constants.FieldDisconnectedAt]; ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			t := time.UnixMilli(ms)
			record.DisconnectedAt = &t
		}
	}

	return record, nil
}

// OnlineDrivers returns drivers holding live leases. Members whose lease
// expired without an explicit offline are pruned as they are discovered.
func (r *presenceRepo) OnlineDrivers(ctx context.Context) ([]string, error) {
	members, err := r.redisClient.SMembers(ctx, constants.KeyOnlineDrivers)
	if err != nil {
		return nil, fmt.Errorf("failed to read online set: %w", err)
	}

	online := make([]string, 0, len(members))
	for _, driverID := range members {
		record, err := r.GetPresence(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.Online {
			// Lease died without an explicit goOffline
			_ = r.redisClient.SRem(ctx, constants.KeyOnlineDrivers, driverID)
			continue
		}
		online = append(online, driverID)
	}

	return online, nil
}
