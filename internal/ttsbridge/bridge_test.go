package ttsbridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avatarworks/gateway/internal/config"
)

// fakeUpstream runs a websocket server standing in for the TTS provider.
// Every received text frame is answered with an "audio:" binary frame, so
// tests can check ordering across the full round trip.
func fakeUpstream(t *testing.T, dialed *atomic.Int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dialed != nil {
			dialed.Add(1)
		}
		if r.Header.Get("xi-api-key") == "" {
			http.Error(w, "missing api key", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, append([]byte("audio:"), payload...)); err != nil {
				return
			}
		}
	}))
}

func bridgeServer(t *testing.T, cfg config.TTSConfig) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func dialClient(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	if err != nil {
		t.Fatalf("dial bridge: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRelayPreservesFrameOrder(t *testing.T) {
	upstream := fakeUpstream(t, nil)
	defer upstream.Close()

	srv := bridgeServer(t, config.TTSConfig{
		APIKey:  "test-key",
		VoiceID: "voice",
		WSURL:   wsURL(upstream.URL),
	})
	client := dialClient(t, srv)

	frames := []string{"first", "second", "third"}
	for _, f := range frames {
		if err := client.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("write %q: %v", f, err)
		}
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, f := range frames {
		messageType, payload, err := client.ReadMessage()
		if err != nil {
			t.Fatalf("read echo of %q: %v", f, err)
		}
		if messageType != websocket.BinaryMessage {
			t.Fatalf("message type = %d, want binary", messageType)
		}
		if got, want := string(payload), "audio:"+f; got != want {
			t.Fatalf("frame = %q, want %q", got, want)
		}
	}
}

func TestUpstreamCloseReachesClient(t *testing.T) {
	upgrader := websocket.Upgrader{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.BinaryMessage, []byte("last"))
		conn.Close()
	}))
	defer upstream.Close()

	srv := bridgeServer(t, config.TTSConfig{
		APIKey:  "test-key",
		VoiceID: "voice",
		WSURL:   wsURL(upstream.URL),
	})
	client := dialClient(t, srv)

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, payload, err := client.ReadMessage(); err != nil || string(payload) != "last" {
		t.Fatalf("first read = %q, %v", payload, err)
	}
	if _, _, err := client.ReadMessage(); err == nil {
		t.Fatal("second read succeeded, want closed connection")
	}
}

func TestMissingCredentialsSingleErrorFrame(t *testing.T) {
	var dialed atomic.Int32
	upstream := fakeUpstream(t, &dialed)
	defer upstream.Close()

	srv := bridgeServer(t, config.TTSConfig{
		APIKey:  "",
		VoiceID: "voice",
		WSURL:   wsURL(upstream.URL),
	})
	client := dialClient(t, srv)

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, payload, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if messageType != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", messageType)
	}
	var body map[string]string
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("error frame is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("error frame = %q, want error field", payload)
	}

	if _, _, err := client.ReadMessage(); err == nil {
		t.Fatal("connection stayed open after error frame")
	}
	if got := dialed.Load(); got != 0 {
		t.Fatalf("upstream dialed %d times, want 0", got)
	}
}

func TestUpstreamURLSubstitution(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TTSConfig
		want string
	}{
		{
			name: "default base",
			cfg:  config.TTSConfig{VoiceID: "abc123"},
			want: "wss://api.elevenlabs.io/v1/text-to-speech/abc123/stream",
		},
		{
			name: "override with placeholder",
			cfg:  config.TTSConfig{VoiceID: "v1", WSURL: "wss://proxy.local/tts/{voice_id}"},
			want: "wss://proxy.local/tts/v1",
		},
		{
			name: "override without placeholder",
			cfg:  config.TTSConfig{VoiceID: "ignored", WSURL: "ws://127.0.0.1:9999/stream"},
			want: "ws://127.0.0.1:9999/stream",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.cfg).UpstreamURL()
			if err != nil {
				t.Fatalf("UpstreamURL: %v", err)
			}
			if got != tt.want {
				t.Fatalf("url = %q, want %q", got, tt.want)
			}
		})
	}
}
