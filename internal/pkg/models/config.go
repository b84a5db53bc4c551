package models

// Config holds every configuration section for the dispatch service
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Logger   LoggerConfig
	Booking  BookingConfig
	Location LocationConfig
	Presence PresenceConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level  string
	Format string
}

// BookingConfig holds booking lifecycle tunables
type BookingConfig struct {
	GraceWindowSec     int    // penalty-free cancellation window after creation
	ExpiryTimeoutSec   int    // how long a booking may wait for a driver
	ExpirySweepSec     int    // expiry worker sweep interval
	DailyCancelQuota   int    // hard cap on penalised cancellations per day
	AccountServiceURL  string // external account/quota collaborator
	DefaultCurrency    string // currency fare rules are denominated in
}

// LocationConfig holds location publisher tunables
type LocationConfig struct {
	MovementThresholdM   float64 // minimum movement before a fix is published
	StalenessThresholdMs int     // max quiet time before a fix is forced out
	DefaultIntervalMs    int     // default publish loop cadence
	HighPrecisionMs      int     // cadence while a ride is being picked up or in progress
	BatterySaveMs        int     // cadence in battery-save mode
	ProjectionTTLSec     int     // lifetime of an active-drivers projection entry
}

// PresenceConfig holds presence tracker tunables
type PresenceConfig struct {
	HeartbeatIntervalSec int // heartbeat cadence while online
	HeartbeatRetrySec    int // fixed backoff between failed heartbeat attempts
	LeaseTTLSec          int // Redis lease lifetime; expiry means disconnected
	MaxStalenessSec      int // records older than this surface as reconnecting
	ActivityWindowSec    int // coarse "was this driver active at all" window
	ObservePollMs        int // observe stream poll cadence
}
