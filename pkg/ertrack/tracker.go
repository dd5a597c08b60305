// tracker.go provides the capture entry point that ties normalization to reporting.

package ertrack

import (
	"context"
)

// Tracker is the capture entry point: every captured signal is normalized
// and reported. A Tracker holds no per-capture state and is safe for
// concurrent use.
type Tracker struct {
	reporter *Reporter
}

// NewTracker creates a Tracker reporting to the collector described by cfg.
func NewTracker(cfg Config, opts ...ReporterOption) *Tracker {
	return &Tracker{reporter: NewReporter(cfg, opts...)}
}

// Launch normalizes sig and reports it with env. It is the counterpart of a
// window.onerror handler and never fails.
func (t *Tracker) Launch(ctx context.Context, sig Signal, env Environment) {
	t.reporter.Report(ctx, Normalize(sig), env)
}

// Close releases the tracker's transport.
func (t *Tracker) Close() error {
	return t.reporter.Close()
}
