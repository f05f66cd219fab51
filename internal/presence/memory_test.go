package presence

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{
		SessionID:   7,
		Path:        "/chat",
		RemoteAddr:  "127.0.0.1:4000",
		ConnectedAt: time.Now(),
	}
	if err := s.SetOnline(ctx, "alice", rec); err != nil {
		t.Fatalf("SetOnline() error = %v", err)
	}

	got, ok, err := s.Lookup(ctx, "alice")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Fatal("Lookup() ok = false, want true")
	}
	if got.SessionID != rec.SessionID || got.Path != rec.Path {
		t.Errorf("Lookup() = %+v, want %+v", got, rec)
	}

	if err := s.SetOffline(ctx, "alice"); err != nil {
		t.Fatalf("SetOffline() error = %v", err)
	}
	if _, ok, _ := s.Lookup(ctx, "alice"); ok {
		t.Error("Lookup() after SetOffline ok = true, want false")
	}
}

func TestMemoryStoreIgnoresAnonymous(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.SetOnline(ctx, "", Record{SessionID: 1}); err != nil {
		t.Fatalf("SetOnline() error = %v", err)
	}
	if _, ok, _ := s.Lookup(ctx, ""); ok {
		t.Error("Lookup(\"\") ok = true, want false")
	}
	if err := s.SetOffline(ctx, ""); err != nil {
		t.Fatalf("SetOffline() error = %v", err)
	}
}

func TestPresenceKey(t *testing.T) {
	if got, want := presenceKey("alice"), "presence:alice:session"; got != want {
		t.Errorf("presenceKey() = %q, want %q", got, want)
	}
}
