package ertrack

import (
	"context"
	"testing"
)

func TestContextID(t *testing.T) {
	ctx := context.Background()

	if _, ok := ContextIDFromContext(ctx); ok {
		t.Error("ContextIDFromContext should report unset on a bare context")
	}

	ctx = WithContextID(ctx, 12345)
	id, ok := ContextIDFromContext(ctx)
	if !ok {
		t.Fatal("ContextIDFromContext should report set")
	}
	if id != 12345 {
		t.Errorf("id = %d, want 12345", id)
	}
}

func TestContextID_ZeroIsSet(t *testing.T) {
	ctx := WithContextID(context.Background(), 0)

	id, ok := ContextIDFromContext(ctx)
	if !ok {
		t.Error("an explicit zero ID should still be reported as set")
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
}

func TestContextID_SurvivesDetach(t *testing.T) {
	ctx, cancel := context.WithCancel(WithContextID(context.Background(), 7))
	cancel()

	id, ok := ContextIDFromContext(context.WithoutCancel(ctx))
	if !ok || id != 7 {
		t.Errorf("ContextIDFromContext = (%d, %v), want (7, true)", id, ok)
	}
}
