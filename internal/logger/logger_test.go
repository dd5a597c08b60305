package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(LoggerConfig{Level: "info", Format: "json"}, &buf)

	log.LogServerStart(":8080", "beacon", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Relay listening", entry["msg"])
	assert.Equal(t, ":8080", entry["addr"])
	assert.Equal(t, "beacon", entry["transport"])
	assert.Equal(t, true, entry["reporting_enabled"])
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(LoggerConfig{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestLogConfigSource(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(LoggerConfig{Format: "text"}, &buf)

	log.LogConfigSource("relay.yaml", true)
	assert.Contains(t, buf.String(), "Loaded configuration")

	buf.Reset()
	log.LogConfigSource("relay.yaml", false)
	assert.Contains(t, buf.String(), "using defaults")
}

func TestLogServerStop(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(LoggerConfig{Format: "text"}, &buf)

	log.LogServerStop("signal received")
	assert.Contains(t, buf.String(), `reason="signal received"`)
}
