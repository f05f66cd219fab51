package dispatch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func upgradeContext(remoteAddr, identity string) *Context {
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.RemoteAddr = remoteAddr
	return &Context{Identity: identity, persistent: true, r: req}
}

func TestUpgradeRateLimitByHost(t *testing.T) {
	link := WithUpgradeRateLimit(2, time.Minute)

	for i := 0; i < 2; i++ {
		if !link(upgradeContext("10.0.0.9:4455", "")) {
			t.Fatalf("attempt %d rejected, want accepted", i+1)
		}
	}

	c := upgradeContext("10.0.0.9:9999", "")
	if link(c) {
		t.Error("third attempt from same host accepted, want rejected")
	}
	if got, want := c.DenyReason, ReasonRateLimited; got != want {
		t.Errorf("DenyReason = %q, want %q", got, want)
	}

	if !link(upgradeContext("10.0.0.10:4455", "")) {
		t.Error("attempt from other host rejected, want accepted")
	}
}

func TestUpgradeRateLimitByIdentity(t *testing.T) {
	link := WithUpgradeRateLimit(1, time.Minute)

	if !link(upgradeContext("10.0.0.9:1", "alice")) {
		t.Fatal("first alice attempt rejected, want accepted")
	}
	if link(upgradeContext("10.0.0.9:2", "alice")) {
		t.Error("second alice attempt accepted, want rejected")
	}
	// Same host, other identity: separate window.
	if !link(upgradeContext("10.0.0.9:3", "bob")) {
		t.Error("bob attempt rejected, want accepted")
	}
}

func TestUpgradeRateLimitSkipsRequestExchanges(t *testing.T) {
	link := WithUpgradeRateLimit(1, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	req.RemoteAddr = "10.0.0.9:4455"
	for i := 0; i < 5; i++ {
		c := &Context{r: req}
		if !link(c) {
			t.Fatalf("request exchange %d rejected, want accepted", i+1)
		}
	}
}

func TestUpgradeRateLimitWindowResets(t *testing.T) {
	link := WithUpgradeRateLimit(1, 20*time.Millisecond)

	if !link(upgradeContext("10.0.0.9:1", "")) {
		t.Fatal("first attempt rejected, want accepted")
	}
	if link(upgradeContext("10.0.0.9:2", "")) {
		t.Fatal("second attempt accepted, want rejected")
	}

	time.Sleep(30 * time.Millisecond)
	if !link(upgradeContext("10.0.0.9:3", "")) {
		t.Error("attempt after window rejected, want accepted")
	}
}

func TestUpgradeRateLimitDisabled(t *testing.T) {
	link := WithUpgradeRateLimit(0, time.Minute)
	for i := 0; i < 10; i++ {
		if !link(upgradeContext("10.0.0.9:4455", "")) {
			t.Fatal("disabled limiter rejected an attempt")
		}
	}
}
