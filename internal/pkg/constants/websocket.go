package constants

// WebSocket events on the driver channel
const (
	EventGoOnline       = "go_online"
	EventGoOffline      = "go_offline"
	EventHeartbeat      = "heartbeat"
	EventLocationUpdate = "location_update"
	EventPublishMode    = "publish_mode"
	EventError          = "error"
)

// WebSocket error codes
const (
	ErrorInvalidFormat = "invalid_format"
	ErrorUnauthorized  = "unauthorized"
	ErrorNotOnline     = "not_online"
	ErrorInternal      = "internal_error"
)
