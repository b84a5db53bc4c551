package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// InitConfig loads configuration from a local env file (when running
// locally) and then from environment variables
func InitConfig(configPath string) *models.Config {
	env := GetEnv("APP_ENV", "local")
	if env == "local" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "biyahe-dispatch")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 9990)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)

	// Database config
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.Format = GetEnv("LOG_FORMAT", "json")

	// Booking config
	configs.Booking.GraceWindowSec = GetEnvAsInt("BOOKING_GRACE_WINDOW_SEC", 60)
	configs.Booking.ExpiryTimeoutSec = GetEnvAsInt("BOOKING_EXPIRY_TIMEOUT_SEC", 300)
	configs.Booking.ExpirySweepSec = GetEnvAsInt("BOOKING_EXPIRY_SWEEP_SEC", 15)
	configs.Booking.DailyCancelQuota = GetEnvAsInt("BOOKING_DAILY_CANCEL_QUOTA", 3)
	configs.Booking.AccountServiceURL = GetEnv("ACCOUNT_SERVICE_URL", "http://localhost:9980")
	configs.Booking.DefaultCurrency = GetEnv("BOOKING_CURRENCY", "PHP")

	// Location config
	configs.Location.MovementThresholdM = GetEnvAsFloat("LOCATION_MOVEMENT_THRESHOLD_M", 0.1)
	configs.Location.StalenessThresholdMs = GetEnvAsInt("LOCATION_STALENESS_THRESHOLD_MS", 2000)
	configs.Location.DefaultIntervalMs = GetEnvAsInt("LOCATION_DEFAULT_INTERVAL_MS", 2000)
	configs.Location.HighPrecisionMs = GetEnvAsInt("LOCATION_HIGH_PRECISION_MS", 500)
	configs.Location.BatterySaveMs = GetEnvAsInt("LOCATION_BATTERY_SAVE_MS", 5000)
	configs.Location.ProjectionTTLSec = GetEnvAsInt("LOCATION_PROJECTION_TTL_SEC", 120)

	// Presence config
	configs.Presence.HeartbeatIntervalSec = GetEnvAsInt("PRESENCE_HEARTBEAT_INTERVAL_SEC", 30)
	configs.Presence.HeartbeatRetrySec = GetEnvAsInt("PRESENCE_HEARTBEAT_RETRY_SEC", 5)
	configs.Presence.LeaseTTLSec = GetEnvAsInt("PRESENCE_LEASE_TTL_SEC", 90)
	configs.Presence.MaxStalenessSec = GetEnvAsInt("PRESENCE_MAX_STALENESS_SEC", 4)
	configs.Presence.ActivityWindowSec = GetEnvAsInt("PRESENCE_ACTIVITY_WINDOW_SEC", 180)
	configs.Presence.ObservePollMs = GetEnvAsInt("PRESENCE_OBSERVE_POLL_MS", 1000)

	return configs
}

// Helper functions to get environment variables with different types

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
