package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	logger.Warn().Str("city", "Paris").Msg("shown")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["message"] != "shown" || entry["city"] != "Paris" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "loud", Output: &buf})
	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	defer func() { log.Logger = previous }()
	SetGlobalLogger(New(Config{Level: "info", Output: &buf}))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	WithContext(ctx).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id, got %#v", entry)
	}
}

func TestGlobalHelpers(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	defer func() { log.Logger = previous }()
	SetGlobalLogger(New(Config{Level: "info", Output: &buf}))

	Info("dataset loaded")
	Warn("DATASET_PATH is set; ignoring DATABASE_URL")
	Error(errors.New("file vanished"), "reload failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), buf.String())
	}

	wantLevels := []string{"info", "warn", "error"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode line %d: %v", i, err)
		}
		if entry["level"] != wantLevels[i] {
			t.Fatalf("line %d: expected level %s, got %v", i, wantLevels[i], entry["level"])
		}
	}
	if !strings.Contains(lines[2], `"error":"file vanished"`) {
		t.Fatalf("expected wrapped error in %s", lines[2])
	}
}
