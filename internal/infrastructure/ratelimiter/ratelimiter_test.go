package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-1") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if rl.Allow("client-1") {
		t.Error("request beyond burst should be rejected")
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if !rl.Allow("client-1") {
		t.Fatal("first request from client-1 should pass")
	}
	if rl.Allow("client-1") {
		t.Error("second request from client-1 should be rejected")
	}
	if !rl.Allow("client-2") {
		t.Error("client-2 has its own bucket and should pass")
	}
}

func TestRemainingDecreases(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	if got := rl.Remaining("client-1"); got != 5 {
		t.Errorf("fresh bucket remaining = %d, want 5", got)
	}
	rl.Allow("client-1")
	if got := rl.Remaining("client-1"); got != 4 {
		t.Errorf("remaining after one request = %d, want 4", got)
	}
}

func TestTokensRefillOverTime(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 1})

	if !rl.Allow("client-1") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("client-1") {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(1100 * time.Millisecond)

	if !rl.Allow("client-1") {
		t.Error("bucket should have refilled")
	}
}

func TestGetSourceKeyPrefersHeader(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := rl.GetSourceKey(r); got != "203.0.113.7" {
		t.Errorf("source key = %q, want header value", got)
	}

	r2 := httptest.NewRequest("GET", "/", nil)
	if got := rl.GetSourceKey(r2); got == "" {
		t.Error("source key should fall back to the remote address")
	}
}
