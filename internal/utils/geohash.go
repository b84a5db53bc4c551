package utils

import (
	"github.com/mmcloughlin/geohash"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// GeohashPrecision is the cell size used for the active-drivers projection.
// Precision 7 is roughly a 150 m cell, fine enough for pickup matching
// inside a municipal service area.
const GeohashPrecision uint = 7

// EncodePoint converts a coordinate to a geohash string at the projection
// precision
func EncodePoint(p models.GeoPoint) string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, GeohashPrecision)
}

// DecodeGeohash converts a geohash string back to a coordinate
func DecodeGeohash(hash string) models.GeoPoint {
	lat, lng := geohash.Decode(hash)
	return models.GeoPoint{Latitude: lat, Longitude: lng}
}
