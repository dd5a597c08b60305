// context.go propagates a cxdb context ID through context.Context so
// reports can be linked to an existing conversation context.

package ertrack

import "context"

// Context key types (unexported to avoid collisions)
type contextIDKey struct{}

// contextIDSet is used to distinguish "zero value" from "not set"
type contextIDSet struct {
	id uint64
}

// WithContextID returns a context with the cxdb context ID attached.
// Transports that persist reports use it instead of creating a new context.
func WithContextID(ctx context.Context, contextID uint64) context.Context {
	return context.WithValue(ctx, contextIDKey{}, contextIDSet{id: contextID})
}

// ContextIDFromContext extracts the cxdb context ID from context.
// Returns 0 and false if not set.
func ContextIDFromContext(ctx context.Context) (uint64, bool) {
	v := ctx.Value(contextIDKey{})
	if v == nil {
		return 0, false
	}
	set, ok := v.(contextIDSet)
	if !ok {
		return 0, false
	}
	return set.id, true
}
