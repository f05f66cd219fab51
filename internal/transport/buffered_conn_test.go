package transport

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	got := make(chan *Envelope, 1)
	errs := make(chan error, 1)
	go func() {
		env, err := b.ReadEnvelope()
		if err != nil {
			errs <- err
			return
		}
		got <- env
	}()

	want := &Envelope{Type: "chat", Data: json.RawMessage(`{"body":"hi"}`)}
	if err := a.WriteEnvelope(want); err != nil {
		t.Fatalf("WriteEnvelope() error = %v", err)
	}

	select {
	case env := <-got:
		if env.Type != want.Type {
			t.Errorf("Type = %q, want %q", env.Type, want.Type)
		}
		if string(env.Data) != string(want.Data) {
			t.Errorf("Data = %q, want %q", env.Data, want.Data)
		}
	case err := <-errs:
		t.Fatalf("ReadEnvelope() error = %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for envelope")
	}
}

func TestCloseUnblocksRead(t *testing.T) {
	a, b := Pipe()
	defer b.Close()

	done := make(chan error, 1)
	go func() {
		_, err := a.ReadEnvelope()
		done <- err
	}()

	// let the reader block first
	time.Sleep(20 * time.Millisecond)
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("ReadEnvelope() after Close returned nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadEnvelope() still blocked after Close")
	}
}

func TestPipeRejectsBadFrame(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	result := make(chan error, 1)
	go func() {
		_, err := b.ReadEnvelope()
		result <- err
	}()

	go func() {
		// raw frame with no type tag
		a.writeMu.Lock()
		defer a.writeMu.Unlock()
		_, _ = a.writer.Write([]byte(`{"data":{}}` + "\n"))
		_ = a.writer.Flush()
	}()

	select {
	case err := <-result:
		if err == nil {
			t.Error("ReadEnvelope() = nil error for typeless frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for decode error")
	}
}
