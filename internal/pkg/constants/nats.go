package constants

// NATS subjects
const (
	// Booking lifecycle events, one per transition
	SubjectBookingCreated   = "booking.created"
	SubjectBookingActivated = "booking.activated"
	SubjectBookingAccepted  = "booking.accepted"
	SubjectBookingArriving  = "booking.arriving"
	SubjectBookingArrived   = "booking.arrived"
	SubjectBookingStarted   = "booking.started"
	SubjectBookingCompleted = "booking.completed"
	SubjectBookingCancelled = "booking.cancelled"
	SubjectBookingExpired   = "booking.expired"

	// Driver presence and location
	SubjectDriverOnline   = "driver.online"
	SubjectDriverOffline  = "driver.offline"
	SubjectLocationUpdate = "location.update"
)
