// Package multi provides a transport that fans out to multiple transports.
// All transports receive every report; outcomes are combined.
package multi

import (
	"context"
	"errors"
	"sync"

	"github.com/strongdm/ertrack/pkg/ertrack"
)

// multiTransport fans out to multiple transports.
type multiTransport struct {
	transports []ertrack.Transport
}

// New creates a transport that sends to multiple transports.
// done resolves once, after every transport has resolved. The combined
// status is success only if all succeeded; otherwise it is the first
// non-success status, with all errors joined.
func New(transports ...ertrack.Transport) ertrack.Transport {
	return &multiTransport{
		transports: transports,
	}
}

// Send forwards the report to all transports.
func (t *multiTransport) Send(ctx context.Context, target string, done ertrack.DoneFunc) {
	if len(t.transports) == 0 {
		done.Resolve(ertrack.Outcome{Status: ertrack.StatusSuccess})
		return
	}

	agg := &aggregate{remaining: len(t.transports), done: done}
	for _, transport := range t.transports {
		transport.Send(ctx, target, agg.resolve)
	}
}

// aggregate collects child outcomes.
type aggregate struct {
	mu        sync.Mutex
	remaining int
	status    ertrack.Status
	errs      []error
	done      ertrack.DoneFunc
}

func (a *aggregate) resolve(o ertrack.Outcome) {
	a.mu.Lock()
	if o.Status != ertrack.StatusSuccess && a.status == ertrack.StatusSuccess {
		a.status = o.Status
	}
	if o.Err != nil {
		a.errs = append(a.errs, o.Err)
	}
	a.remaining--
	last := a.remaining == 0
	outcome := ertrack.Outcome{Status: a.status, Err: errors.Join(a.errs...)}
	a.mu.Unlock()

	if last {
		a.done.Resolve(outcome)
	}
}

// Close calls Close on all transports, collecting any errors.
func (t *multiTransport) Close() error {
	var errs []error
	for _, transport := range t.transports {
		if err := transport.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
