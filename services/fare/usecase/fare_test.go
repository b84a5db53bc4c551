package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/services/fare"
)

// fakeFareRepo serves zones and rules from memory
type fakeFareRepo struct {
	zones []models.ZoneBoundary
	rules map[string]map[string]*models.FareRule // zone -> destination -> rule
}

func (f *fakeFareRepo) GetActiveZones(ctx context.Context) ([]models.ZoneBoundary, error) {
	return f.zones, nil
}

func (f *fakeFareRepo) GetFareRule(ctx context.Context, zone, destination string) (*models.FareRule, error) {
	if byDest, ok := f.rules[zone]; ok {
		return byDest[destination], nil
	}
	return nil, nil
}

func aurelioRepo() *fakeFareRepo {
	return &fakeFareRepo{
		zones: []models.ZoneBoundary{
			{
				Name:   "AURELIO",
				Active: true,
				Vertices: []models.GeoPoint{
					{Latitude: 14.40, Longitude: 120.90},
					{Latitude: 14.40, Longitude: 121.00},
					{Latitude: 14.50, Longitude: 121.00},
					{Latitude: 14.50, Longitude: 120.90},
				},
			},
		},
		rules: map[string]map[string]*models.FareRule{
			"AURELIO": {
				"Municipal Hall": {
					FromZone:    "AURELIO",
					Destination: "Municipal Hall",
					Amount:      50.00,
					Currency:    "PHP",
					Active:      true,
					Batch:       "2026-rates",
					Version:     1,
				},
			},
		},
	}
}

func TestResolve_MatchingRule(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())

	pickup := models.GeoPoint{Latitude: 14.45, Longitude: 120.95}
	quote, err := uc.Resolve(context.Background(), pickup, "Municipal Hall")
	require.NoError(t, err)

	assert.Equal(t, 50.00, quote.Amount)
	assert.Equal(t, "PHP", quote.Currency)
	assert.Equal(t, "AURELIO", quote.Zone)
	assert.Equal(t, 1.0, quote.SurgeMultiplier)
}

func TestResolve_NoRuleIsUnavailableNotZero(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())

	pickup := models.GeoPoint{Latitude: 14.45, Longitude: 120.95}
	quote, err := uc.Resolve(context.Background(), pickup, "Provincial Capitol")

	assert.ErrorIs(t, err, fare.ErrFareUnavailable)
	assert.Nil(t, quote)
}

func TestResolve_OutsideServiceArea(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())

	pickup := models.GeoPoint{Latitude: 10.0, Longitude: 119.0}
	_, err := uc.Resolve(context.Background(), pickup, "Municipal Hall")

	assert.ErrorIs(t, err, fare.ErrOutsideServiceArea)
}

func TestResolve_InvalidCoordinate(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())

	_, err := uc.Resolve(context.Background(), models.GeoPoint{Latitude: 95, Longitude: 0}, "Municipal Hall")
	assert.ErrorIs(t, err, fare.ErrInvalidCoordinate)
}

func TestZoneFor_NoBoundariesMeansNoRestriction(t *testing.T) {
	uc := NewFareUC(&models.Config{}, &fakeFareRepo{})

	zone, err := uc.ZoneFor(context.Background(), models.GeoPoint{Latitude: 14.45, Longitude: 120.95})
	require.NoError(t, err)
	assert.Equal(t, "", zone)
}

func TestZoneFor_FirstMatchWinsByName(t *testing.T) {
	// Two overlapping zones; the repo contract orders by name, so ABELARDO
	// must win over AURELIO for a point inside both.
	repo := aurelioRepo()
	repo.zones = append([]models.ZoneBoundary{
		{
			Name:     "ABELARDO",
			Active:   true,
			Vertices: repo.zones[0].Vertices,
		},
	}, repo.zones...)

	uc := NewFareUC(&models.Config{}, repo)
	zone, err := uc.ZoneFor(context.Background(), models.GeoPoint{Latitude: 14.45, Longitude: 120.95})
	require.NoError(t, err)
	assert.Equal(t, "ABELARDO", zone)
}

func TestApplyDiscount(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())

	quote := &models.FareQuote{Amount: 50.00, Currency: "PHP", SurgeMultiplier: 1.5, Zone: "AURELIO"}

	discounted, err := uc.ApplyDiscount(quote, 20)
	require.NoError(t, err)

	assert.InDelta(t, 40.00, discounted.Amount, 1e-9)
	// Non-base components are unaffected
	assert.Equal(t, 1.5, discounted.SurgeMultiplier)
	assert.Equal(t, "PHP", discounted.Currency)
	// Original quote is immutable
	assert.Equal(t, 50.00, quote.Amount)
}

func TestApplyDiscount_OutOfRange(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())
	quote := &models.FareQuote{Amount: 50.00}

	_, err := uc.ApplyDiscount(quote, -1)
	assert.ErrorIs(t, err, fare.ErrInvalidDiscount)

	_, err = uc.ApplyDiscount(quote, 100.5)
	assert.ErrorIs(t, err, fare.ErrInvalidDiscount)
}

func TestApplyDiscount_FullRange(t *testing.T) {
	uc := NewFareUC(&models.Config{}, aurelioRepo())
	quote := &models.FareQuote{Amount: 50.00}

	zero, err := uc.ApplyDiscount(quote, 0)
	require.NoError(t, err)
	assert.Equal(t, 50.00, zero.Amount)

	full, err := uc.ApplyDiscount(quote, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.00, full.Amount)
}
