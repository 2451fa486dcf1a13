package identity

import (
	"context"
	"testing"
)

func TestWithUserIDAndUserIDFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithUserID(ctx, 42)

	got, ok := UserIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected user id to be present")
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestUserIDFromContext_InvalidOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatalf("expected missing user id to return false")
	}

	ctx = context.WithValue(ctx, userKey, "42")
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatalf("expected non-int user id to return false")
	}

	ctx = WithUserID(context.Background(), 0)
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatalf("expected zero user id to return false")
	}
}
