// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// State store drivers supported by the player service
const (
	StateStoreMemory = "memory"
	StateStoreLocal  = "local"
	StateStoreRedis  = "redis"
	StateStoreMySQL  = "mysql"
)

// Config holds all configuration for the application
type Config struct {
	Academy    AcademyConfig
	StateStore StateStoreConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Session    SessionConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	JWT        JWTConfig
	Tracing    TracingConfig
	APIKey     string
}

// AcademyConfig holds settings of the remote academy API
type AcademyConfig struct {
	BaseURL          string
	Timeout          time.Duration
	FetchConcurrency int
}

// StateStoreConfig holds settings of the client state store
type StateStoreConfig struct {
	Driver string
	Path   string
	TTL    time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// SessionConfig holds player session registry settings
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepSchedule string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled      bool
	Exporter     string
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Academy API configuration
	baseURL := strings.TrimSpace(os.Getenv("ACADEMY_API_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("ACADEMY_API_BASE_URL is required")
	}
	cfg.Academy.BaseURL = strings.TrimRight(baseURL, "/")

	timeout, err := durationOrDefault("ACADEMY_API_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Academy.Timeout = timeout

	concurrency, err := intOrDefault("CONTENT_FETCH_CONCURRENCY", "4")
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}
	cfg.Academy.FetchConcurrency = concurrency

	// Server configuration
	serverPort, err := intOrDefault("SERVER_PORT", "8080")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	accessExpiry, err := durationOrDefault("JWT_ACCESS_TOKEN_EXPIRY", "1h")
	if err != nil {
		return nil, err
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	// API Key configuration (optional, protects the admin endpoints)
	cfg.APIKey = os.Getenv("API_KEY")

	// Session registry configuration
	idleTTL, err := durationOrDefault("SESSION_IDLE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.Session.IdleTTL = idleTTL

	sweepSchedule := os.Getenv("SESSION_SWEEP_SCHEDULE")
	if sweepSchedule == "" {
		sweepSchedule = "@every 5m"
	}
	cfg.Session.SweepSchedule = sweepSchedule

	// State store configuration
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STATE_STORE_DRIVER")))
	if driver == "" {
		driver = StateStoreMemory
	}
	switch driver {
	case StateStoreMemory, StateStoreLocal, StateStoreRedis, StateStoreMySQL:
	default:
		return nil, fmt.Errorf("invalid STATE_STORE_DRIVER: %q", driver)
	}
	cfg.StateStore.Driver = driver

	cfg.StateStore.Path = os.Getenv("STATE_STORE_PATH")
	if driver == StateStoreLocal && cfg.StateStore.Path == "" {
		return nil, fmt.Errorf("STATE_STORE_PATH is required for the local state store")
	}

	stateTTL, err := durationOrDefault("STATE_TTL", "720h") // 30 days
	if err != nil {
		return nil, err
	}
	cfg.StateStore.TTL = stateTTL

	// Database configuration (only the mysql state store needs it)
	if driver == StateStoreMySQL {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	// Redis configuration
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	redisPort, err := intOrDefault("REDIS_PORT", "6379")
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDB, err := intOrDefault("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// Tracing configuration
	cfg.Tracing.Enabled = parseBool(os.Getenv("OTEL_ENABLED"))
	cfg.Tracing.Exporter = strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER")))
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "stdout"
	}
	cfg.Tracing.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	cfg.Tracing.ServiceName = os.Getenv("OTEL_SERVICE_NAME")
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "hitpoly-player"
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func loadDatabase(cfg *Config) error {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	return nil
}

func durationOrDefault(key, fallback string) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(key, fallback string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseOrigins parses a comma-separated origin list, defaulting to allow all
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
