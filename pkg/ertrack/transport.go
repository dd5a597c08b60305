// transport.go defines the Transport interface for one-way report delivery.

package ertrack

import (
	"context"
	"errors"
)

// ErrTransportClosed is reported for sends attempted after Close.
var ErrTransportClosed = errors.New("ertrack: transport closed")

// Status classifies how a delivery ended.
type Status int

const (
	// StatusSuccess means the collector accepted the report.
	StatusSuccess Status = iota

	// StatusFailure means the delivery failed (network error, HTTP error, timeout).
	StatusFailure

	// StatusAborted means the delivery was cancelled before it completed.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one delivery. Err is nil on success.
type Outcome struct {
	Status Status
	Err    error
}

// DoneFunc receives the outcome of a delivery.
type DoneFunc func(Outcome)

// Resolve invokes f with o. A nil DoneFunc is allowed.
func (f DoneFunc) Resolve(o Outcome) {
	if f != nil {
		f(o)
	}
}

// Transport delivers fully-formed report URLs.
// Implementations must be safe for concurrent use.
type Transport interface {
	// Send starts delivering target and returns without waiting for it.
	// done is resolved exactly once, after every resource the delivery
	// allocated has been released. Send never panics on delivery failure.
	Send(ctx context.Context, target string, done DoneFunc)

	// Close aborts pending deliveries and releases the transport.
	// Sends after Close resolve with StatusAborted and ErrTransportClosed.
	Close() error
}

// noopTransportInternal is an internal noop transport to avoid import cycles.
type noopTransportInternal struct{}

func (t *noopTransportInternal) Send(ctx context.Context, target string, done DoneFunc) {
	done.Resolve(Outcome{Status: StatusSuccess})
}

func (t *noopTransportInternal) Close() error {
	return nil
}
