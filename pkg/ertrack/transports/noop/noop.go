// Package noop provides a no-operation transport that discards all reports.
// Useful for testing and for disabling error reporting.
package noop

import (
	"context"

	"github.com/strongdm/ertrack/pkg/ertrack"
)

// noopTransport discards all reports.
type noopTransport struct{}

// New creates a transport that discards all reports.
// Every delivery resolves immediately with StatusSuccess.
func New() ertrack.Transport {
	return &noopTransport{}
}

// Send discards the report and resolves done with success.
func (t *noopTransport) Send(ctx context.Context, target string, done ertrack.DoneFunc) {
	done.Resolve(ertrack.Outcome{Status: ertrack.StatusSuccess})
}

// Close is a no-op and returns nil.
func (t *noopTransport) Close() error {
	return nil
}
