package models

import "time"

// GeoPoint represents a geographic coordinate pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is an endpoint of a trip: an address plus its coordinate and
// optional place metadata supplied by the client
type Place struct {
	Address string   `json:"address"`
	Name    string   `json:"name,omitempty"`
	Point   GeoPoint `json:"point"`
}

// Fix is a single raw GPS reading from a driver device
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	SpeedKph  float64   `json:"speed_kph"`
	Timestamp time.Time `json:"timestamp"`
}

// Point returns the coordinate pair of the fix
func (f Fix) Point() GeoPoint {
	return GeoPoint{Latitude: f.Latitude, Longitude: f.Longitude}
}

// DriverLocation is the live, ephemeral location record for one driver.
// It is overwritten on every published fix and never historized.
type DriverLocation struct {
	DriverID  string    `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	SpeedKph  float64   `json:"speed_kph"`
	Geohash   string    `json:"geohash"`
	Online    bool      `json:"online"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NearbyDriver is a row of the nearest-driver projection query
type NearbyDriver struct {
	DriverID   string  `json:"driver_id"`
	DistanceKm float64 `json:"distance_km"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// PublishMode selects the cadence of a driver's location publish loop.
// It is purely an interval choice, the throttling algorithm is the same.
type PublishMode string

const (
	PublishModeDefault       PublishMode = "default"
	PublishModeHighPrecision PublishMode = "high_precision"
	PublishModeBatterySave   PublishMode = "battery_save"
)
