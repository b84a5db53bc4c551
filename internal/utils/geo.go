package utils

import (
	"math"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// EarthRadiusMeters is the fixed radius used for all distance math
const EarthRadiusMeters = 6371000.0

// IsPointInPolygon reports whether the point lies inside the polygon using
// the even-odd ray casting rule. The polygon is treated as implicitly
// closed; an input that repeats the first vertex at the end yields the same
// answer. Polygons with fewer than three distinct edges are never matched.
func IsPointInPolygon(p models.GeoPoint, polygon []models.GeoPoint) bool {
	n := len(polygon)
	// Drop an explicit closing vertex so closure is always implicit
	if n > 1 && polygon[0] == polygon[n-1] {
		polygon = polygon[:n-1]
		n--
	}
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Latitude > p.Latitude) != (vj.Latitude > p.Latitude) {
			crossLng := (vj.Longitude-vi.Longitude)*(p.Latitude-vi.Latitude)/(vj.Latitude-vi.Latitude) + vi.Longitude
			if p.Longitude < crossLng {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// HaversineDistanceMeters returns the great-circle distance between two
// points in meters
func HaversineDistanceMeters(p1, p2 models.GeoPoint) float64 {
	dLat := toRadians(p2.Latitude - p1.Latitude)
	dLon := toRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(p1.Latitude))*math.Cos(toRadians(p2.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// HaversineDistanceKm returns the great-circle distance in kilometers
func HaversineDistanceKm(p1, p2 models.GeoPoint) float64 {
	return HaversineDistanceMeters(p1, p2) / 1000.0
}

// ValidCoordinate reports whether a latitude/longitude pair is in range
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
