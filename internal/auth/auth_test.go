package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuimath/internal/store"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials")
	if err := SaveToken(path, "abc-123"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	token, err := LoadToken(path)
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "abc-123" {
		t.Fatalf("expected abc-123, got %q", token)
	}
	if err := ClearToken(path); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	token, err = LoadToken(path)
	if err != nil || token != "" {
		t.Fatalf("expected empty token after clear, got %q (%v)", token, err)
	}
	if err := ClearToken(path); err != nil {
		t.Fatalf("clearing twice must not fail: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuimath.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()

	credentials := filepath.Join(dir, "credentials")
	if got := CurrentUser(ctx, st, credentials); got != nil {
		t.Fatalf("expected anonymous without credentials, got %+v", got)
	}

	user, token, err := st.CreateUser(ctx, "ada")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := SaveToken(credentials, token); err != nil {
		t.Fatalf("save token: %v", err)
	}
	got := CurrentUser(ctx, st, credentials)
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user %d, got %+v", user.ID, got)
	}

	if err := SaveToken(credentials, "stale-token"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if got := CurrentUser(ctx, st, credentials); got != nil {
		t.Fatalf("stale token must resolve to anonymous, got %+v", got)
	}
}
