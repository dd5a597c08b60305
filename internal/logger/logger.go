// Package logger provides structured logging for the ertrack relay.
//
// This package wraps Go's standard log/slog package with relay-specific
// convenience methods and consistent formatting.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with additional convenience methods
type Logger struct {
	*slog.Logger
}

// LoggerConfig defines logger configuration options
type LoggerConfig struct {
	// Level specifies the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Format specifies output format (text, json)
	Format string `yaml:"format"`
}

// New creates a logger writing to stderr with the specified configuration
func New(cfg LoggerConfig) *Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(cfg LoggerConfig, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel maps a level name to a slog level; unknown names mean info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Relay-specific convenience methods

// LogServerStart logs that the relay is accepting reports
func (l *Logger) LogServerStart(addr, transport string, reporting bool) {
	l.Info("Relay listening",
		"addr", addr,
		"transport", transport,
		"reporting_enabled", reporting,
	)
}

// LogServerStop logs a shutdown
func (l *Logger) LogServerStop(reason string) {
	l.Info("Relay shutting down", "reason", reason)
}

// LogConfigSource logs where the configuration came from
func (l *Logger) LogConfigSource(path string, fromFile bool) {
	if fromFile {
		l.Info("Loaded configuration", "path", path)
		return
	}
	l.Info("Configuration file not found, using defaults", "path", path)
}
