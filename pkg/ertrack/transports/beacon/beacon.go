// Package beacon provides a transport that delivers reports as HTTP GET
// requests, the way a tracking pixel does. No response body is expected.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/strongdm/ertrack/pkg/ertrack"
)

const (
	defaultTimeout = 10 * time.Second

	// maxDrainBytes bounds how much of an unexpected response body is read
	// so the connection can be reused.
	maxDrainBytes = 64 << 10
)

// BeaconOption configures the beacon transport.
type BeaconOption func(*beaconConfig)

type beaconConfig struct {
	client  *http.Client
	timeout time.Duration
}

// WithTimeout bounds each delivery (default: 10s).
func WithTimeout(d time.Duration) BeaconOption {
	return func(c *beaconConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) BeaconOption {
	return func(c *beaconConfig) {
		if client != nil {
			c.client = client
		}
	}
}

// beaconTransport issues one GET per report on its own goroutine.
type beaconTransport struct {
	client  *http.Client
	timeout time.Duration

	// root is cancelled by Close to abort in-flight deliveries.
	root   context.Context
	cancel context.CancelFunc

	closeMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a beacon transport.
func New(opts ...BeaconOption) ertrack.Transport {
	cfg := &beaconConfig{
		client:  http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	root, cancel := context.WithCancel(context.Background())
	return &beaconTransport{
		client:  cfg.client,
		timeout: cfg.timeout,
		root:    root,
		cancel:  cancel,
	}
}

// Send starts the delivery and returns immediately.
func (t *beaconTransport) Send(ctx context.Context, target string, done ertrack.DoneFunc) {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		done.Resolve(ertrack.Outcome{Status: ertrack.StatusAborted, Err: ertrack.ErrTransportClosed})
		return
	}
	t.wg.Add(1)
	t.closeMu.Unlock()

	go t.deliver(ctx, target, done)
}

// deliver performs one request. Deferred calls run in reverse order, so the
// response body and the timers are released before done is resolved.
func (t *beaconTransport) deliver(ctx context.Context, target string, done ertrack.DoneFunc) {
	defer t.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	stop := context.AfterFunc(t.root, cancel)

	outcome := ertrack.Outcome{Status: ertrack.StatusSuccess}
	defer func() {
		stop()
		cancel()
		done.Resolve(outcome)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		outcome = ertrack.Outcome{Status: ertrack.StatusFailure, Err: fmt.Errorf("beacon: %w", err)}
		return
	}

	resp, err := t.client.Do(req)
	if err != nil {
		outcome = t.classify(ctx, err)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		outcome = ertrack.Outcome{
			Status: ertrack.StatusFailure,
			Err:    fmt.Errorf("beacon: HTTP %d", resp.StatusCode),
		}
	}
}

// classify separates aborts (Close, caller cancellation) from failures,
// which include timeouts.
func (t *beaconTransport) classify(ctx context.Context, err error) ertrack.Outcome {
	switch {
	case t.root.Err() != nil:
		return ertrack.Outcome{Status: ertrack.StatusAborted, Err: ertrack.ErrTransportClosed}
	case errors.Is(ctx.Err(), context.Canceled):
		return ertrack.Outcome{Status: ertrack.StatusAborted, Err: fmt.Errorf("beacon: %w", err)}
	default:
		return ertrack.Outcome{Status: ertrack.StatusFailure, Err: fmt.Errorf("beacon: %w", err)}
	}
}

// Close aborts in-flight deliveries and waits for their outcomes.
func (t *beaconTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeMu.Lock()
		t.closed = true
		t.closeMu.Unlock()

		t.cancel()
		t.wg.Wait()
	})
	return nil
}
