package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func limiterRig(rps float64, burst int) http.Handler {
	rl := NewRateLimiter(rps, burst)
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBurstThenRejects(t *testing.T) {
	h := limiterRig(0.001, 3)

	for i := 0; i < 3; i++ {
		if rec := hit(h, "10.0.0.1:1000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}

	rec := hit(h, "10.0.0.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 response missing Retry-After")
	}
}

func TestRateLimiterKeysByHostNotPort(t *testing.T) {
	h := limiterRig(0.001, 1)

	if rec := hit(h, "10.0.0.1:1000"); rec.Code != http.StatusOK {
		t.Fatalf("first request: code = %d", rec.Code)
	}
	// Same host on a new connection shares the exhausted bucket.
	if rec := hit(h, "10.0.0.1:2000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same host, new port: code = %d, want 429", rec.Code)
	}
	// A different host gets its own bucket.
	if rec := hit(h, "10.0.0.2:1000"); rec.Code != http.StatusOK {
		t.Fatalf("different host: code = %d", rec.Code)
	}
}
