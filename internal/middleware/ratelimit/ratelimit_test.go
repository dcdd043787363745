package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerMinute: perMinute})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("a") {
		t.Error("4th request within the window should be rejected")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own budget")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("budget should reset after the window")
	}

	if m := rl.GetMetrics(); m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit and 2 clients", m)
	}
}

func TestLimiter_SteadyTrafficStillLimited(t *testing.T) {
	rl, now := newTestLimiter(2)

	allowed := 0
	for i := 0; i < 6; i++ {
		if rl.Allow("a") {
			allowed++
		}
		*now = now.Add(5 * time.Second)
	}
	if allowed != 2 {
		t.Errorf("allowed = %d in one window, want 2", allowed)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(10)
	rl.Allow("old")
	*now = now.Add(9 * time.Minute)
	rl.Allow("fresh")
	*now = now.Add(2 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", removed)
	}
	if rl.GetMetrics().ClientCount != 1 {
		t.Error("fresh client should remain")
	}
}

func TestMiddleware_MutatingOnly(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Middleware(
		func(*http.Request) string { return "203.0.113.7" },
		MutatingOnly,
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := func(method string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/expenses", nil))
		return rec.Code
	}

	if c := codes(http.MethodPost); c != http.StatusOK {
		t.Fatalf("first POST = %d", c)
	}
	if c := codes(http.MethodDelete); c != http.StatusTooManyRequests {
		t.Errorf("second mutating request = %d, want 429", c)
	}
	for i := 0; i < 5; i++ {
		if c := codes(http.MethodGet); c != http.StatusOK {
			t.Errorf("GET should not be limited, got %d", c)
		}
	}
}

func TestMiddleware_CustomRejection(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Middleware(
		func(*http.Request) string { return "k" },
		nil,
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("code = %d, want custom rejection", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}
