// ertrack-relay accepts browser error reports over HTTP, normalizes them and
// forwards each one to the configured collector.
//
// Run with: go run ./cmd/ertrack-relay -config relay.yaml

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"

	"github.com/strongdm/ertrack/internal/config"
	"github.com/strongdm/ertrack/internal/logger"
	"github.com/strongdm/ertrack/pkg/ertrack"
	"github.com/strongdm/ertrack/pkg/ertrack/ingest"
	"github.com/strongdm/ertrack/pkg/ertrack/transports/beacon"
	"github.com/strongdm/ertrack/pkg/ertrack/transports/cxdb"
	"github.com/strongdm/ertrack/pkg/ertrack/transports/noop"
	"github.com/strongdm/ertrack/pkg/ertrack/transports/stderr"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "relay.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "ertrack-relay: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, fromFile, err := config.Load(configFile, os.Getenv)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging)
	log.LogConfigSource(configFile, fromFile)

	transport, release, err := buildTransport(cfg.Tracker)
	if err != nil {
		return err
	}
	defer release()

	opts := []ertrack.ReporterOption{
		ertrack.WithTransport(transport),
		ertrack.WithLogger(log.Logger),
	}
	if cfg.Tracker.Scrub {
		opts = append(opts, ertrack.WithDefaultScrubbing())
	}
	tracker := ertrack.NewTracker(cfg.Tracker.Collector(), opts...)
	defer func() {
		if err := tracker.Close(); err != nil {
			log.Warn("Failed to close transport", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/report", ingest.NewHandler(tracker,
		ingest.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		ingest.WithLogger(log.Logger),
	))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"ertrack-relay"}`)
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	log.LogServerStart(listener.Addr().String(), cfg.Tracker.Transport, cfg.Tracker.Collector().Enabled())
	notifySystemd(log, daemon.SdNotifyReady)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.LogServerStop("signal received")
		notifySystemd(log, daemon.SdNotifyStopping)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildTransport creates the configured transport. release frees resources
// the transport depends on but does not own (the cxdb connection).
func buildTransport(cfg config.TrackerConfig) (ertrack.Transport, func(), error) {
	nothing := func() {}

	switch cfg.Transport {
	case config.TransportStderr:
		var opts []stderr.StderrOption
		if cfg.Verbose {
			opts = append(opts, stderr.WithVerbose())
		}
		if cfg.Color {
			opts = append(opts, stderr.WithColor())
		}
		return stderr.New(opts...), nothing, nil
	case config.TransportNoop:
		return noop.New(), nothing, nil
	case config.TransportCXDB:
		client, err := cxdbclient.Dial(cfg.CXDBAddr, cxdbclient.WithClientTag("ertrack-relay"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to cxdb at %s: %w", cfg.CXDBAddr, err)
		}
		release := func() { _ = client.Close() }
		return cxdb.New(client, cxdb.WithTimeout(cfg.Timeout)), release, nil
	default:
		return beacon.New(beacon.WithTimeout(cfg.Timeout)), nothing, nil
	}
}

// notifySystemd reports a state change to the service manager. Outside a
// systemd unit (no NOTIFY_SOCKET) it does nothing.
func notifySystemd(log *logger.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("systemd notification failed", "state", state, "error", err)
		return
	}
	if sent {
		log.Debug("systemd notified", "state", state)
	}
}
