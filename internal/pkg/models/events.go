package models

import "time"

// BookingEvent is the single domain event emitted by every booking
// transition. The notification dispatcher and fare/payment collaborators
// subscribe to these; the state machine itself performs no delivery.
type BookingEvent struct {
	BookingID   string        `json:"booking_id"`
	PassengerID string        `json:"passenger_id"`
	DriverID    string        `json:"driver_id,omitempty"`
	Status      BookingStatus `json:"status"`
	CancelledBy CancelActor   `json:"cancelled_by,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	FareAmount  float64       `json:"fare_amount,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// PresenceEvent announces a driver presence change on the event bus
type PresenceEvent struct {
	DriverID  string    `json:"driver_id"`
	Online    bool      `json:"online"`
	Zone      string    `json:"zone,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationEvent carries a published driver fix for downstream consumers
type LocationEvent struct {
	DriverID  string    `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	SpeedKph  float64   `json:"speed_kph"`
	Timestamp time.Time `json:"timestamp"`
}
