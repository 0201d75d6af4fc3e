package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{
		"DATASET_PATH", "DATABASE_URL", "HOST", "PORT", "CORS_ALLOWED_ORIGINS",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_PATH", "SHUTDOWN_TIMEOUT",
	} {
		value, ok := values[key]
		t.Setenv(key, value)
		if !ok {
			os.Unsetenv(key)
		}
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setEnv(t, map[string]string{"DATASET_PATH": "data/tours.csv"})

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Dataset.Path != "data/tours.csv" {
		t.Fatalf("unexpected dataset path %q", cfg.Dataset.Path)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics path %q", cfg.Metrics.Path)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Fatal("expected default CORS origins")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":         "mysql://app:secret@db:3306/tours",
		"HOST":                 "127.0.0.1",
		"PORT":                 "9090",
		"CORS_ALLOWED_ORIGINS": " http://a.example , ,http://b.example",
		"LOG_LEVEL":            "DEBUG",
		"LOG_FORMAT":           "text",
		"SHUTDOWN_TIMEOUT":     "3s",
	})

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if got := strings.Join(cfg.CORS.AllowedOrigins, "|"); got != "http://a.example|http://b.example" {
		t.Fatalf("unexpected origins %q", got)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.Server.ShutdownTimeout)
	}
}

func TestFromEnvCollectsValidationErrors(t *testing.T) {
	setEnv(t, map[string]string{
		"PORT":         "70000",
		"LOG_LEVEL":    "loud",
		"METRICS_PATH": "metrics",
	})

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DATASET_PATH or DATABASE_URL", "PORT", "LOG_LEVEL", "METRICS_PATH"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got %v", want, err)
		}
	}
}

func TestFromEnvRejectsBadPort(t *testing.T) {
	setEnv(t, map[string]string{"DATASET_PATH": "x.csv", "PORT": "eighty"})

	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "invalid PORT") {
		t.Fatalf("expected invalid PORT error, got %v", err)
	}
}

func TestDatabaseDriver(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@h/db":   "pgx",
		"postgresql://u:p@h/db": "pgx",
		"MYSQL://u:p@h/db":      "mysql",
	}
	for url, want := range cases {
		got, err := DatabaseDriver(url)
		if err != nil || got != want {
			t.Fatalf("DatabaseDriver(%q) = %q, %v; want %q", url, got, err, want)
		}
	}

	if _, err := DatabaseDriver("sqlite://tours.db"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}
