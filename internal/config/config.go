package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded once at process start
// and passed explicitly to the components that need it.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	// Database
	DatabaseURL string

	// Redis (optional; rate limiting falls back to in-memory when empty)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Shared secret used to verify the identity provider's tokens
	AuthSecret string

	// Referral policy
	MaxActivePerPlatform int
	SubmissionLimit      int
	SubmissionWindow     time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8787"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "server.log"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AuthSecret: os.Getenv("AUTH_SECRET"),

		MaxActivePerPlatform: getEnvIntOrDefault("MAX_ACTIVE_PER_PLATFORM", 2),
		SubmissionLimit:      getEnvIntOrDefault("SUBMISSION_RATE_LIMIT", 5),
		SubmissionWindow:     getEnvDurationOrDefault("SUBMISSION_RATE_WINDOW", time.Hour),
	}

	if cfg.DatabaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "refermarket")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
