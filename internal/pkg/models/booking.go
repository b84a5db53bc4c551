package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "PENDING"
	BookingStatusLookingForDriver BookingStatus = "LOOKING_FOR_DRIVER"
	BookingStatusScheduled        BookingStatus = "SCHEDULED"
	BookingStatusAccepted         BookingStatus = "ACCEPTED"
	BookingStatusDriverArriving   BookingStatus = "DRIVER_ARRIVING"
	BookingStatusDriverArrived    BookingStatus = "DRIVER_ARRIVED"
	BookingStatusInProgress       BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted        BookingStatus = "COMPLETED"
	BookingStatusCancelled        BookingStatus = "CANCELLED"
	BookingStatusExpired          BookingStatus = "EXPIRED"
)

// Terminal reports whether the status is an end state
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// Active reports whether a driver is committed to the booking, from
// accept until the ride ends
func (s BookingStatus) Active() bool {
	switch s {
	case BookingStatusAccepted, BookingStatusDriverArriving,
		BookingStatusDriverArrived, BookingStatusInProgress:
		return true
	}
	return false
}

// CancelActor identifies who cancelled a booking
type CancelActor string

const (
	CancelledByNone      CancelActor = ""
	CancelledByPassenger CancelActor = "passenger"
	CancelledByDriver    CancelActor = "driver"
)

// FareQuote is the fare estimate locked at booking creation time.
// The base amount and currency are immutable once the booking exists;
// distance and duration are informational only.
type FareQuote struct {
	Amount          float64 `json:"amount" db:"fare_amount"`
	Currency        string  `json:"currency" db:"fare_currency"`
	SurgeMultiplier float64 `json:"surge_multiplier" db:"fare_surge"`
	Zone            string  `json:"zone" db:"fare_zone"`
	DistanceKm      float64 `json:"distance_km" db:"fare_distance_km"`
	DurationMin     float64 `json:"duration_min" db:"fare_duration_min"`
}

// Booking is a ride request. It is created by a passenger, mutated only by
// the booking state machine and retained forever as a historical record.
type Booking struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	PassengerID uuid.UUID     `json:"passenger_id" db:"passenger_id"`
	DriverID    *uuid.UUID    `json:"driver_id,omitempty" db:"driver_id"`
	Pickup      Place         `json:"pickup"`
	Destination Place         `json:"destination"`
	Status      BookingStatus `json:"status" db:"status"`
	FareQuote   FareQuote     `json:"fare_estimate"`
	ActualFare  *float64      `json:"actual_fare,omitempty" db:"actual_fare"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty" db:"scheduled_at"`

	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	PickupAt    *time.Time `json:"pickup_at,omitempty" db:"pickup_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CancelledBy CancelActor `json:"cancelled_by,omitempty" db:"cancelled_by"`

	// CanCancelWithoutPenalty is derived at read time from the grace window;
	// it is never persisted.
	CanCancelWithoutPenalty bool `json:"can_cancel_without_penalty" db:"-"`
}

// BookingRequest is a passenger's request to create a booking
type BookingRequest struct {
	PassengerID string     `json:"passenger_id"`
	Pickup      Place      `json:"pickup"`
	Destination Place      `json:"destination"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// CompleteRequest carries the optional discount applied at completion
type CompleteRequest struct {
	DiscountPercent float64 `json:"discount_percent,omitempty"`
}
