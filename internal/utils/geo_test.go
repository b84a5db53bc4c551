package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

func square() []models.GeoPoint {
	return []models.GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 10},
		{Latitude: 10, Longitude: 10},
		{Latitude: 10, Longitude: 0},
	}
}

func TestIsPointInPolygon(t *testing.T) {
	tests := []struct {
		name    string
		point   models.GeoPoint
		polygon []models.GeoPoint
		want    bool
	}{
		{
			name:    "center of square",
			point:   models.GeoPoint{Latitude: 5, Longitude: 5},
			polygon: square(),
			want:    true,
		},
		{
			name:    "outside square",
			point:   models.GeoPoint{Latitude: 15, Longitude: 5},
			polygon: square(),
			want:    false,
		},
		{
			name:    "just inside edge",
			point:   models.GeoPoint{Latitude: 9.999, Longitude: 5},
			polygon: square(),
			want:    true,
		},
		{
			name:    "degenerate two vertices",
			point:   models.GeoPoint{Latitude: 5, Longitude: 5},
			polygon: square()[:2],
			want:    false,
		},
		{
			name:    "empty polygon",
			point:   models.GeoPoint{Latitude: 5, Longitude: 5},
			polygon: nil,
			want:    false,
		},
		{
			name: "concave polygon notch excluded",
			point: models.GeoPoint{
				Latitude: 5, Longitude: 9,
			},
			polygon: []models.GeoPoint{
				{Latitude: 0, Longitude: 0},
				{Latitude: 0, Longitude: 10},
				{Latitude: 5, Longitude: 8},
				{Latitude: 10, Longitude: 10},
				{Latitude: 10, Longitude: 0},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPointInPolygon(tt.point, tt.polygon))
		})
	}
}

// The evaluator must not care where the vertex list starts, nor whether it
// explicitly repeats the first vertex at the end.
func TestIsPointInPolygonRotationAndClosureInvariance(t *testing.T) {
	poly := square()
	inside := models.GeoPoint{Latitude: 3, Longitude: 7}
	outside := models.GeoPoint{Latitude: -3, Longitude: 7}

	for shift := 0; shift < len(poly); shift++ {
		rotated := append(append([]models.GeoPoint{}, poly[shift:]...), poly[:shift]...)

		assert.True(t, IsPointInPolygon(inside, rotated), "rotation %d", shift)
		assert.False(t, IsPointInPolygon(outside, rotated), "rotation %d", shift)

		closed := append(append([]models.GeoPoint{}, rotated...), rotated[0])
		assert.True(t, IsPointInPolygon(inside, closed), "closed rotation %d", shift)
		assert.False(t, IsPointInPolygon(outside, closed), "closed rotation %d", shift)
	}
}

func TestHaversineDistanceMeters(t *testing.T) {
	// Poblacion to the municipal hall area, roughly 1.1 km apart
	a := models.GeoPoint{Latitude: 14.4583, Longitude: 120.9405}
	b := models.GeoPoint{Latitude: 14.4663, Longitude: 120.9468}

	d := HaversineDistanceMeters(a, b)
	assert.InDelta(t, 1120, d, 60)

	// Zero distance for identical points
	assert.Equal(t, 0.0, HaversineDistanceMeters(a, a))

	// Symmetry
	assert.InDelta(t, d, HaversineDistanceMeters(b, a), 1e-9)
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(14.45, 120.94))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(90.1, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
}

func TestEncodeDecodeGeohash(t *testing.T) {
	p := models.GeoPoint{Latitude: 14.4583, Longitude: 120.9405}
	hash := EncodePoint(p)
	assert.Len(t, hash, int(GeohashPrecision))

	decoded := DecodeGeohash(hash)
	assert.InDelta(t, p.Latitude, decoded.Latitude, 0.01)
	assert.InDelta(t, p.Longitude, decoded.Longitude, 0.01)
}
