// Package config provides configuration management for the ertrack relay.
//
// Configuration Loading Priority (highest to lowest):
//  1. Environment variables (ERTRACK_TOKEN, ERTRACK_URL, ERTRACK_ADDR)
//  2. Configuration file
//  3. Default values
//
// Example configuration file:
//
//	server:
//	  addr: ":8080"
//	  read_timeout: 5s
//	tracker:
//	  token: "site-token"
//	  url: "https://collector.example.com/log.gif"
//	  transport: beacon
//	  scrub: true
//	logging:
//	  level: info
//	  format: json
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/strongdm/ertrack/internal/logger"
	"github.com/strongdm/ertrack/pkg/ertrack"
)

// Transport names accepted in TrackerConfig.Transport.
const (
	TransportBeacon = "beacon"
	TransportStderr = "stderr"
	TransportCXDB   = "cxdb"
	TransportNoop   = "noop"
)

// Config represents the main configuration structure
type Config struct {
	Server  ServerConfig        `yaml:"server"`
	Tracker TrackerConfig       `yaml:"tracker"`
	Logging logger.LoggerConfig `yaml:"logging"`
}

// ServerConfig defines the ingest HTTP server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxBodyBytes limits the size of an incoming report.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// TrackerConfig defines where and how reports are forwarded
type TrackerConfig struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url"`

	// Transport is one of beacon, stderr, cxdb, noop.
	Transport string `yaml:"transport"`

	// Timeout bounds a single delivery.
	Timeout time.Duration `yaml:"timeout"`

	// Scrub enables redaction of secrets in messages and URLs.
	Scrub bool `yaml:"scrub"`

	// Verbose adds stack frames to stderr output.
	Verbose bool `yaml:"verbose"`

	// Color styles stderr output on a terminal.
	Color bool `yaml:"color"`

	// CXDBAddr is the cxdb binary protocol address for the cxdb transport.
	CXDBAddr string `yaml:"cxdb_addr"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			MaxBodyBytes: 64 << 10,
		},
		Tracker: TrackerConfig{
			Transport: TransportBeacon,
			Timeout:   10 * time.Second,
			Scrub:     true,
			CXDBAddr:  "localhost:9009",
		},
		Logging: logger.LoggerConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Collector returns the core reporter configuration.
func (t TrackerConfig) Collector() ertrack.Config {
	return ertrack.Config{Token: t.Token, URL: t.URL}
}

// ApplyEnv overrides fields from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("ERTRACK_TOKEN"); v != "" {
		c.Tracker.Token = v
	}
	if v := getenv("ERTRACK_URL"); v != "" {
		c.Tracker.URL = v
	}
	if v := getenv("ERTRACK_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the configuration. A missing token or URL is not an
// error: the relay then accepts reports and discards them.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}

	switch c.Tracker.Transport {
	case TransportBeacon, TransportStderr, TransportNoop:
	case TransportCXDB:
		if c.Tracker.CXDBAddr == "" {
			errs = append(errs, errors.New("tracker.cxdb_addr is required for the cxdb transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracker.transport %q is not one of beacon, stderr, cxdb, noop", c.Tracker.Transport))
	}

	if c.Tracker.URL != "" {
		u, err := url.Parse(c.Tracker.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("tracker.url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("tracker.url must be http or https, got %q", u.Scheme))
		}
	}

	if c.Tracker.Timeout < 0 {
		errs = append(errs, fmt.Errorf("tracker.timeout must not be negative, got %s", c.Tracker.Timeout))
	}

	return errors.Join(errs...)
}
