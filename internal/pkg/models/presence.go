package models

import "time"

// PresenceRecord mirrors a driver's connectivity. It is maintained by a
// server-guaranteed lease rather than client push: if the connection drops
// for any reason the lease expires and readers observe the driver offline
// without any further client action.
type PresenceRecord struct {
	DriverID       string     `json:"driver_id"`
	Online         bool       `json:"online"`
	LastSeen       time.Time  `json:"last_seen"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

// ConnectionState is what a presence consumer should surface for a driver
type ConnectionState string

const (
	// StateOnline means the record is fresh and the driver is reachable
	StateOnline ConnectionState = "online"
	// StateReconnecting means the record exists but is older than the
	// staleness threshold; a stale position must not be shown as live
	StateReconnecting ConnectionState = "reconnecting"
	// StateDisconnected means the lease expired or a read error occurred
	StateDisconnected ConnectionState = "disconnected"
	// StateOffline means the driver went offline deliberately
	StateOffline ConnectionState = "offline"
)

// PresenceState is one element of an observe stream
type PresenceState struct {
	State  ConnectionState `json:"state"`
	Record *PresenceRecord `json:"record,omitempty"`
	At     time.Time       `json:"at"`
}
