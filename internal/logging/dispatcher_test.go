package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/skytrace/missionmap/internal/dispatcher"
)

func TestNewDispatcherLogger(t *testing.T) {
	dl := NewDispatcherLogger(zerolog.Nop())

	if dl == nil {
		t.Fatal("expected non-nil DispatcherLogger")
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestDispatcherLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	dl.Debug("test message", "key1", "value1", "key2", 42)

	entry := decodeLine(t, &buf)
	if entry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", entry["level"])
	}
	if entry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", entry["message"])
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestDispatcherLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("info message", "type", "GPS")

	entry := decodeLine(t, &buf)
	if entry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", entry["level"])
	}
	if entry["type"] != "GPS" {
		t.Errorf("expected type='GPS', got %v", entry["type"])
	}
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("failed", "mission", "m1")

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", entry["level"])
	}
	if entry["mission"] != "m1" {
		t.Errorf("expected mission='m1', got %v", entry["mission"])
	}
}

func TestDispatcherLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	dl.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestDispatcherLogger_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("odd", "a", 1, "dangling", 7, "b")

	entry := decodeLine(t, &buf)
	if entry["a"] != float64(1) {
		t.Errorf("expected a=1, got %v", entry["a"])
	}
	if _, ok := entry["b"]; ok {
		t.Error("dangling key must be dropped")
	}
}

func TestDispatcherLogger_TypedFields(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("event failed", "type", "GPS", "duration", 1500*time.Millisecond, "error", errors.New("bad payload"))

	entry := decodeLine(t, &buf)
	if entry["error"] != "bad payload" {
		t.Errorf("expected error='bad payload', got %v", entry["error"])
	}
	if entry["duration"] != float64(1500) { // zerolog renders durations in ms
		t.Errorf("expected duration=1500, got %v", entry["duration"])
	}
}

func TestDispatcherLogger_ImplementsInterface(t *testing.T) {
	var _ dispatcher.Logger = NewDispatcherLogger(zerolog.Nop())
}
