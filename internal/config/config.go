package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Dataset configuration
	Dataset DatasetConfig

	// Server configuration
	Server ServerConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Metrics configuration
	Metrics MetricsConfig
}

// DatasetConfig says where tour dates are read from. A CSV path wins over a
// database URL when both are set.
type DatasetConfig struct {
	Path        string
	DatabaseURL string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int
	Host            string
	ShutdownTimeout time.Duration
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// MetricsConfig holds the prometheus endpoint path; empty disables it
type MetricsConfig struct {
	Path string
}

// Load reads .env files and then configuration from environment variables
func Load() (*Config, error) {
	// Missing files are fine; real environment variables take precedence.
	_ = godotenv.Load("config/local.env")
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv reads configuration from the process environment only
func FromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.Dataset.Path = os.Getenv("DATASET_PATH")
	cfg.Dataset.DatabaseURL = os.Getenv("DATABASE_URL")

	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}

	cfg.loadCORS()
	cfg.loadLogging()
	cfg.Metrics.Path = getEnvOrDefault("METRICS_PATH", "/metrics")
	if v, ok := os.LookupEnv("METRICS_PATH"); ok && strings.TrimSpace(v) == "" {
		cfg.Metrics.Path = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadServer() error {
	portStr := getEnvOrDefault("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")

	timeout, err := time.ParseDuration(getEnvOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	c.Server.ShutdownTimeout = timeout
	return nil
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default for local development
		c.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8050",
		}
		return
	}

	var origins []string
	for _, origin := range strings.Split(originsEnv, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORS.AllowedOrigins = origins
}

func (c *Config) loadLogging() {
	c.Logging.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	c.Logging.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Dataset.Path == "" && c.Dataset.DatabaseURL == "" {
		errors = append(errors, "DATASET_PATH or DATABASE_URL is required")
	}
	if c.Dataset.Path == "" && c.Dataset.DatabaseURL != "" {
		if _, err := DatabaseDriver(c.Dataset.DatabaseURL); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "SHUTDOWN_TIMEOUT must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, "METRICS_PATH must start with /")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DatabaseDriver maps a database URL to the database/sql driver name that
// serves it.
func DatabaseDriver(url string) (string, error) {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", nil
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql", nil
	default:
		return "", fmt.Errorf("DATABASE_URL must start with postgres:// or mysql://")
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
