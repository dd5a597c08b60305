// recover.go provides Guard for reporting panics raised by wrapped code.

package ertrack

import (
	"context"
	"runtime/debug"
)

// Guard runs fn and reports a panic raised by it as a NativeError signal.
// Unlike a bare recover, the panic is recorded; like it, Guard does NOT
// re-panic. The recovered value is returned (nil when fn returned normally).
//
//	tracker.Guard(ctx, env, func() {
//	    renderWidget(data) // may panic
//	})
func (t *Tracker) Guard(ctx context.Context, env Environment, fn func()) (recovered any) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		recovered = r
		t.Launch(ctx, NativeError{Err: ErrorObjectFromPanic(r, debug.Stack())}, env)
	}()

	fn()
	return nil
}
