package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestUpgradeAndExchange(t *testing.T) {
	upgrader := NewWSUpgrader(DefaultOptions())

	serverGot := make(chan *Envelope, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()

		env, err := conn.ReadEnvelope()
		if err != nil {
			t.Errorf("server ReadEnvelope() error = %v", err)
			return
		}
		serverGot <- env

		if err := conn.WriteEnvelope(&Envelope{Type: "pong"}); err != nil {
			t.Errorf("server WriteEnvelope() error = %v", err)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("client write error = %v", err)
	}

	select {
	case env := <-serverGot:
		if got, want := env.Type, "ping"; got != want {
			t.Errorf("server got type %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server read")
	}

	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read error = %v", err)
	}
	if got, want := string(data), `{"type":"pong"}`; got != want {
		t.Errorf("client got %q, want %q", got, want)
	}
}

func TestUpgradeRejectsPlainRequest(t *testing.T) {
	upgrader := NewWSUpgrader(DefaultOptions())

	upgradeErrs := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := upgrader.Upgrade(w, r)
		upgradeErrs <- err
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	select {
	case err := <-upgradeErrs:
		if err == nil {
			t.Error("Upgrade() of plain request succeeded, want error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	// the handshake reply comes from the upgrader, not the handler
	if resp.StatusCode == http.StatusOK {
		t.Errorf("status = %d, want a handshake error", resp.StatusCode)
	}
}

func TestClientCloseUnblocksServerRead(t *testing.T) {
	upgrader := NewWSUpgrader(DefaultOptions())

	readResult := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()

		_, err = conn.ReadEnvelope()
		readResult <- err
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	client.Close()

	select {
	case err := <-readResult:
		if err == nil {
			t.Error("ReadEnvelope() = nil error after client close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server read still blocked after client close")
	}
}
