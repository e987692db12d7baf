package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Geocoding GeocodingConfig
	Security  SecurityConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// GeocodingConfig holds geocoding provider configuration
type GeocodingConfig struct {
	Provider  string
	BaseURL   string
	UserAgent string
}

// SecurityConfig holds the location search abuse-prevention settings.
// Loaded once at startup and treated as immutable afterwards.
type SecurityConfig struct {
	MaxSearchesPerHour           int
	MaxSearchesPerTarget         int
	MinSearchIntervalSeconds     int
	EnableTriangulationDetection bool
	TriangulationMinDistanceKm   float64
	TriangulationTimeWindowHours int
	TriangulationMinSearchPoints int
	LogAllSearches               bool
	SearchLogRetentionDays       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "neighbortools"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Geocoding: GeocodingConfig{
			Provider:  getEnv("GEOCODING_PROVIDER", "nominatim"),
			BaseURL:   getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODING_USER_AGENT", "neighbortools/1.0"),
		},
		Security: SecurityConfig{
			MaxSearchesPerHour:           getEnvAsInt("SECURITY_MAX_SEARCHES_PER_HOUR", 100),
			MaxSearchesPerTarget:         getEnvAsInt("SECURITY_MAX_SEARCHES_PER_TARGET", 10),
			MinSearchIntervalSeconds:     getEnvAsInt("SECURITY_MIN_SEARCH_INTERVAL_SECONDS", 2),
			EnableTriangulationDetection: getEnvAsBool("SECURITY_ENABLE_TRIANGULATION_DETECTION", true),
			TriangulationMinDistanceKm:   getEnvAsFloat("SECURITY_TRIANGULATION_MIN_DISTANCE_KM", 1.0),
			TriangulationTimeWindowHours: getEnvAsInt("SECURITY_TRIANGULATION_TIME_WINDOW_HOURS", 24),
			TriangulationMinSearchPoints: getEnvAsInt("SECURITY_TRIANGULATION_MIN_SEARCH_POINTS", 3),
			LogAllSearches:               getEnvAsBool("SECURITY_LOG_ALL_SEARCHES", true),
			SearchLogRetentionDays:       getEnvAsInt("SECURITY_SEARCH_LOG_RETENTION_DAYS", 90),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "location-search"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
