package usecase

import (
	"context"
	"fmt"

	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/internal/pkg/observability"
	"github.com/biyahe-app/biyahe/internal/utils"
	"github.com/biyahe-app/biyahe/services/fare"
)

// fareUC implements the fare.FareUC interface
type fareUC struct {
	cfg  *models.Config
	repo fare.FareRepo
}

// NewFareUC creates a new fare use case
func NewFareUC(cfg *models.Config, repo fare.FareRepo) fare.FareUC {
	return &fareUC{cfg: cfg, repo: repo}
}

// Resolve computes the locked fare quote for a pickup and destination.
// Zone membership decides the rule row; no matching rule is a typed
// failure, never a zero fare.
func (uc *fareUC) Resolve(ctx context.Context, pickup models.GeoPoint, destination string) (*models.FareQuote, error) {
	if !utils.ValidCoordinate(pickup.Latitude, pickup.Longitude) {
		return nil, fare.ErrInvalidCoordinate
	}

	zone, err := uc.ZoneFor(ctx, pickup)
	if err != nil {
		observability.FareResolutions.WithLabelValues("out_of_zone").Inc()
		return nil, err
	}

	rule, err := uc.repo.GetFareRule(ctx, zone, destination)
	if err != nil {
		return nil, fmt.Errorf("fare rule lookup failed: %w", err)
	}
	if rule == nil {
		observability.FareResolutions.WithLabelValues("unavailable").Inc()
		logger.Warn("No fare rule for route",
			logger.String("zone", zone),
			logger.String("destination", destination))
		return nil, fare.ErrFareUnavailable
	}

	observability.FareResolutions.WithLabelValues("resolved").Inc()
	return &models.FareQuote{
		Amount:          rule.Amount,
		Currency:        rule.Currency,
		SurgeMultiplier: 1.0,
		Zone:            zone,
	}, nil
}

// ZoneFor resolves the first active zone containing the point. Zones are
// ordered by name, so overlapping boundaries resolve deterministically.
// No configured boundaries means no restriction.
func (uc *fareUC) ZoneFor(ctx context.Context, point models.GeoPoint) (string, error) {
	zones, err := uc.repo.GetActiveZones(ctx)
	if err != nil {
		return "", fmt.Errorf("zone lookup failed: %w", err)
	}

	if len(zones) == 0 {
		return "", nil
	}

	for _, zone := range zones {
		if utils.IsPointInPolygon(point, zone.Vertices) {
			return zone.Name, nil
		}
	}

	return "", fare.ErrOutsideServiceArea
}

// ApplyDiscount applies a percentage discount multiplicatively to the base
// amount only. Surge multiplier and any add-on components are never
// discounted.
func (uc *fareUC) ApplyDiscount(quote *models.FareQuote, percent float64) (*models.FareQuote, error) {
	if percent < 0 || percent > 100 {
		return nil, fare.ErrInvalidDiscount
	}

	discounted := *quote
	discounted.Amount = quote.Amount * (1 - percent/100)
	return &discounted, nil
}
