// Package ertrack captures uncaught browser errors, normalizes them into a
// single record shape, and hands each record to a one-way transport.
//
// Browsers report failures through inconsistent calling conventions: the
// window.onerror callback receives positional arguments, error objects carry
// engine-specific fields (lineNumber, fileName, sourceURL), and stack traces
// are free text whose format depends on the engine. ertrack reconciles all of
// them into a Record and reports it as a flat, percent-encoded query string.
//
// # Core Components
//
//   - Signal: the as-received error trigger (NativeError, ExplicitFields, MessageOnly)
//   - Normalize: turns any Signal into a canonical Record
//   - ParseStack: extracts frames and a best-guess line address from stack text
//   - Serialize: dependency-free canonical encoder used for the stack field
//   - Reporter: builds the report URL and hands it to a Transport
//   - Transport: one-way delivery (beacon, stderr, multi, noop, cxdb)
//
// # Quick Start
//
//	tracker := ertrack.NewTracker(
//	    ertrack.Config{Token: "abc", URL: "https://collector.example.com/log"},
//	    ertrack.WithTransport(beacon.New()),
//	)
//	defer tracker.Close()
//	tracker.Launch(ctx, ertrack.MessageOnly{Message: "Script error."}, env)
//
// # Design Principles
//
//   - Capturing never fails: every operation degrades to empty fields instead
//     of returning an error or panicking
//   - Missing configuration silently disables reporting
//   - Delivery is fire-and-forget: outcomes are logged, never retried
package ertrack
