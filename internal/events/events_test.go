package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	if err := p.Publish(context.Background(), &Event{Type: TypeConnected}); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var got *Event
	p := NewCallbackPublisher(func(_ context.Context, ev *Event) error {
		got = ev
		return nil
	})

	want := &Event{
		Type:      TypeKicked,
		SessionID: 3,
		Path:      "/chat",
		Timestamp: time.Now(),
	}
	if err := p.Publish(context.Background(), want); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got != want {
		t.Errorf("callback got %+v, want %+v", got, want)
	}
}

func TestCallbackPublisherPropagatesError(t *testing.T) {
	wantErr := errors.New("sink down")
	p := NewCallbackPublisher(func(context.Context, *Event) error {
		return wantErr
	})
	if err := p.Publish(context.Background(), &Event{}); !errors.Is(err, wantErr) {
		t.Errorf("Publish() error = %v, want %v", err, wantErr)
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(nil)
	if err := p.Publish(context.Background(), &Event{Type: TypeClosed, SessionID: 1}); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
}

func TestNatsSubjects(t *testing.T) {
	p := NewNatsPublisher(nil, "", nil)
	if got, want := p.Subject(TypeConnected), "gateway.session.connected"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}

	p = NewNatsPublisher(nil, "edge.sessions", nil)
	if got, want := p.Subject(TypeKicked), "edge.sessions.kicked"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
}
