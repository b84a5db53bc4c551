package models

import "time"

// ZoneBoundary is a named polygon demarcating a fare zone or the
// platform-wide service area. Vertices are ordered and implicitly closed.
type ZoneBoundary struct {
	Name     string     `json:"name" db:"name"`
	Vertices []GeoPoint `json:"vertices"`
	Active   bool       `json:"active" db:"active"`
}

// FareRule maps an origin zone and a destination name to a fixed fare.
// Rules are grouped into a named, versioned batch; only one batch is
// active at a time.
type FareRule struct {
	FromZone    string    `json:"from_zone" db:"from_zone"`
	Destination string    `json:"destination" db:"destination"`
	Amount      float64   `json:"amount" db:"amount"`
	Currency    string    `json:"currency" db:"currency"`
	Active      bool      `json:"active" db:"active"`
	Batch       string    `json:"batch" db:"batch"`
	Version     int       `json:"version" db:"version"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
