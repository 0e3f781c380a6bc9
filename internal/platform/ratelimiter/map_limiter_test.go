package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	if New(0, 1, time.Minute) != nil {
		t.Fatalf("expected nil limiter for zero rps")
	}
	if New(1, 0, time.Minute) != nil {
		t.Fatalf("expected nil limiter for zero burst")
	}
	var nilLimiter *MapLimiter
	if !nilLimiter.Allow("k", time.Now()) {
		t.Fatalf("nil limiter must allow")
	}
}

func TestAllowConsumesBurstPerKey(t *testing.T) {
	limiter := New(1, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if !limiter.Allow("a", now) || !limiter.Allow("a", now) {
		t.Fatalf("expected burst of two to pass")
	}
	if limiter.Allow("a", now) {
		t.Fatalf("expected third request in the same instant to be limited")
	}
	if !limiter.Allow("b", now) {
		t.Fatalf("expected independent bucket for another key")
	}
	if !limiter.Allow("a", now.Add(time.Second)) {
		t.Fatalf("expected token to refill after one second")
	}
}

func TestEvictDropsIdleKeys(t *testing.T) {
	limiter := New(1, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.Allow("old", now)
	limiter.Allow("fresh", now.Add(2*time.Minute))

	limiter.Evict(now.Add(2 * time.Minute))
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected 1 key after eviction, got %d", got)
	}
}

func TestMiddlewareReturns429WhenLimited(t *testing.T) {
	limiter := New(0.001, 1, time.Minute)
	handler := Middleware(limiter, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Member-Id", "alice")
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", second.Code, second.Body.String())
	}
}

func TestClientKeyPrefersMemberHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := ClientKey(req); got != "ip:10.0.0.7" {
		t.Fatalf("unexpected key %q", got)
	}
	req.Header.Set("X-Member-Id", "bob")
	if got := ClientKey(req); got != "member:bob" {
		t.Fatalf("unexpected key %q", got)
	}
}
