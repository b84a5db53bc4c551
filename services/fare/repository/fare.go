package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/fare"
)

type fareRepo struct {
	db *sqlx.DB
}

// NewFareRepository creates a new fare repository over PostgreSQL
func NewFareRepository(db *sqlx.DB) fare.FareRepo {
	return &fareRepo{db: db}
}

// GetActiveZones returns every active zone boundary ordered by name.
// Vertices are stored as a JSONB array of {latitude, longitude} objects.
func (r *fareRepo) GetActiveZones(ctx context.Context) ([]models.ZoneBoundary, error) {
	query := `
		SELECT name, vertices, active
		FROM zone_boundaries
		WHERE active = true
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query zone boundaries: %w", err)
	}
	defer rows.Close()

	var zones []models.ZoneBoundary
	for rows.Next() {
		var zone models.ZoneBoundary
		var rawVertices []byte

		if err := rows.Scan(&zone.Name, &rawVertices, &zone.Active); err != nil {
			return nil, fmt.Errorf("failed to scan zone boundary: %w", err)
		}
		if err := json.Unmarshal(rawVertices, &zone.Vertices); err != nil {
			return nil, fmt.Errorf("invalid vertex list for zone %s: %w", zone.Name, err)
		}

		zones = append(zones, zone)
	}

	return zones, rows.Err()
}

// GetFareRule returns the active rule for (zone, destination) from the
// currently active batch, or nil when no rule matches
func (r *fareRepo) GetFareRule(ctx context.Context, zone, destination string) (*models.FareRule, error) {
	query := `
		SELECT fr.from_zone, fr.destination, fr.amount, fr.currency,
		       fr.active, fr.batch, fr.version, fr.updated_at
		FROM fare_rules fr
		JOIN fare_rule_batches b ON b.name = fr.batch AND b.version = fr.version
		WHERE fr.from_zone = $1
		  AND fr.destination = $2
		  AND fr.active = true
		  AND b.active = true
	`

	rule := &models.FareRule{}
	var updatedAt time.Time

	row := r.db.QueryRowContext(ctx, query, zone, destination)
	err := row.Scan(
		&rule.FromZone,
		&rule.Destination,
		&rule.Amount,
		&rule.Currency,
		&rule.Active,
		&rule.Batch,
		&rule.Version,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fare rule: %w", err)
	}

	rule.UpdatedAt = updatedAt
	return rule, nil
}
