package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingTransitions counts successful state machine transitions
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "biyahe", Name: "booking_transitions_total", Help: "Successful booking transitions"},
		[]string{"to"},
	)

	// BookingConflicts counts rejected transitions (lost races, illegal moves)
	BookingConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "biyahe", Name: "booking_conflicts_total", Help: "Rejected booking transitions"},
		[]string{"kind"},
	)

	// DriversOnline tracks the live presence gauge
	DriversOnline = promauto.NewGauge(
		prometheus.GaugeOpts{Namespace: "biyahe", Name: "drivers_online", Help: "Number of online drivers"},
	)

	// LocationPublishes counts publish decisions by outcome
	LocationPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "biyahe", Name: "location_publishes_total", Help: "Location fix decisions"},
		[]string{"outcome"}, // published, throttled, rejected
	)

	// HeartbeatFailures counts heartbeat attempts that needed a retry
	HeartbeatFailures = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "biyahe", Name: "presence_heartbeat_failures_total", Help: "Failed heartbeat attempts"},
	)

	// FareResolutions counts fare lookups by outcome
	FareResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "biyahe", Name: "fare_resolutions_total", Help: "Fare rule resolutions"},
		[]string{"outcome"}, // resolved, unavailable, out_of_zone
	)
)
