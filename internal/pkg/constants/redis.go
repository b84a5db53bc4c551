package constants

// Redis key formats
const (
	// Presence Tracker
	KeyDriverPresence = "driver:presence:%s" // Format: driver:presence:{driver_id}
	KeyOnlineDrivers  = "drivers:online"     // Set of currently online driver IDs

	// Location Publisher
	KeyDriverLocation = "driver:location:%s" // Format: driver:location:{driver_id}
	KeyActiveDrivers  = "drivers:active"     // GEO set backing nearest-driver queries
)

// Redis hash fields
const (
	FieldLatitude       = "lat"
	FieldLongitude      = "lng"
	FieldHeading        = "heading"
	FieldSpeed          = "speed"
	FieldGeohash        = "geohash"
	FieldTimestamp      = "ts"
	FieldOnline         = "online"
	FieldLastSeen       = "last_seen"
	FieldConnectedAt    = "connected_at"
	FieldDisconnectedAt = "disconnected_at"
)
