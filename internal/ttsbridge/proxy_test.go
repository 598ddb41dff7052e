package ttsbridge

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avatarworks/gateway/internal/config"
)

func TestProxyForwardsRequestAndAudio(t *testing.T) {
	var gotPath, gotKey, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3 bytes"))
	}))
	defer upstream.Close()

	proxy := NewHTTPProxy(config.TTSConfig{
		APIKey:   "secret-key",
		VoiceID:  "voice-1",
		HTTPBase: upstream.URL,
	})

	req := httptest.NewRequest(http.MethodPost, "/tts-proxy", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if gotPath != "/v1/text-to-speech/voice-1/stream" {
		t.Fatalf("upstream path = %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Fatalf("xi-api-key = %q", gotKey)
	}
	if gotBody != `{"text":"hello"}` {
		t.Fatalf("forwarded body = %q", gotBody)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Body.String() != "mp3 bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestProxyUpstreamStatusPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	proxy := NewHTTPProxy(config.TTSConfig{APIKey: "k", VoiceID: "v", HTTPBase: upstream.URL})
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tts-proxy", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rec.Code)
	}
}

func TestProxyMissingCredentials(t *testing.T) {
	proxy := NewHTTPProxy(config.TTSConfig{})
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tts-proxy", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
