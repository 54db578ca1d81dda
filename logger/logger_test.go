package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFields_PairsIntoMap(t *testing.T) {
	m := Fields("attempt", 2, "delay", "1s")
	if m["attempt"] != 2 {
		t.Errorf("expected attempt=2, got %v", m["attempt"])
	}
	if m["delay"] != "1s" {
		t.Errorf("expected delay=1s, got %v", m["delay"])
	}
}

func TestFields_IgnoresDanglingValue(t *testing.T) {
	m := Fields("key", "value", "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 entry, got %d", len(m))
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := FromZerolog(zerolog.New(&buf))

	log.Warn("retrying after error", Fields(FieldAttempt, 1, FieldDelay, "2s"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "retrying after error" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry[FieldAttempt] != float64(1) {
		t.Errorf("expected attempt=1, got %v", entry[FieldAttempt])
	}
	if entry["level"] != "warn" {
		t.Errorf("expected warn level, got %v", entry["level"])
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := FromZerolog(zerolog.New(&buf)).WithComponent("resilience")

	log.Info("breaker opened")

	if !strings.Contains(buf.String(), `"component":"resilience"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := FromZerolog(zerolog.New(&buf))

	log.WithError(errTest).Error("operation failed")

	if !strings.Contains(buf.String(), "simulated failure") {
		t.Errorf("expected error message in output, got %q", buf.String())
	}
}

var errTest = &testError{"simulated failure"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamps enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}

	cfg = Config{Level: "debug", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestRegistry_GetFallsBackToComponentLogger(t *testing.T) {
	l := Get("never-registered")
	if l == nil {
		t.Fatal("expected a logger")
	}
}

func TestRegistry_GetReturnsRegistered(t *testing.T) {
	var buf bytes.Buffer
	custom := FromZerolog(zerolog.New(&buf))
	Register("classify", custom)

	if got := Get("classify"); got != custom {
		t.Error("expected the registered logger back")
	}
}
