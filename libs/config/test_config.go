package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If .env file doesn't exist or environment variables are not set, returns a Config with in-memory
// defaults which allows tests to run without a database or Redis
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.StateStore.Driver = StateStoreMemory
	cfg.StateStore.TTL = 24 * time.Hour
	cfg.Academy.Timeout = 5 * time.Second
	cfg.Academy.FetchConcurrency = 2
	cfg.Session.IdleTTL = time.Minute
	cfg.Session.SweepSchedule = "@every 1m"
	cfg.Logging.Level = "debug"
	cfg.CORS.AllowedOrigins = []string{"*"}

	cfg.Academy.BaseURL = os.Getenv("TEST_ACADEMY_API_BASE_URL")

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("TEST_JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "test-secret"
	}

	accessExpiryStr := os.Getenv("TEST_JWT_ACCESS_TOKEN_EXPIRY")
	if accessExpiryStr == "" {
		accessExpiryStr = "1h"
	}
	accessExpiry, err := time.ParseDuration(accessExpiryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		// Return in-memory config to allow tests without MySQL
		return cfg, nil
	}
	cfg.Database.Host = dbHost

	dbPort, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort
	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")
	cfg.StateStore.Driver = StateStoreMySQL

	return cfg, nil
}
