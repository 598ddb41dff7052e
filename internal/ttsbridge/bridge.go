// Package ttsbridge relays websocket frames between a browser and the
// upstream text-to-speech provider. The bridge is anonymous: it shares no
// state with identity sessions, only provider configuration.
package ttsbridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avatarworks/gateway/internal/config"
)

const defaultUpstreamBase = "wss://api.elevenlabs.io/v1/text-to-speech/{voice_id}/stream"

const writeTimeout = 10 * time.Second

// Bridge upgrades client connections and runs one duplex relay per
// connection. It is safe for concurrent use; each ServeHTTP call owns its
// own pair of connections.
type Bridge struct {
	cfg      config.TTSConfig
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
}

func New(cfg config.TTSConfig) *Bridge {
	return &Bridge{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser origin checks happen at the CORS layer; the
			// bridge accepts any origin the router let through.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
	}
}

// UpstreamURL resolves the provider websocket URL: the configured
// override wins entirely, with {voice_id} substituted if present.
func (b *Bridge) UpstreamURL() (string, error) {
	base := strings.TrimSpace(b.cfg.WSURL)
	if base == "" {
		base = defaultUpstreamBase
	}
	base = strings.ReplaceAll(base, "{voice_id}", url.PathEscape(b.cfg.VoiceID))
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "wss"
	}
	return u.String(), nil
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		return
	}
	defer client.Close()

	if b.cfg.APIKey == "" || b.cfg.VoiceID == "" {
		// The only user-visible bridge error path: one frame, then close.
		writeErrorFrame(client, "TTS credentials not configured")
		return
	}

	upstreamURL, err := b.UpstreamURL()
	if err != nil {
		writeErrorFrame(client, "invalid TTS upstream URL")
		return
	}

	header := http.Header{}
	header.Set("xi-api-key", b.cfg.APIKey)

	upstream, resp, err := b.dialer.DialContext(r.Context(), upstreamURL, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		slog.Error("tts upstream dial failed", "status", status, "error", err)
		writeErrorFrame(client, "failed to connect to TTS provider")
		return
	}
	defer upstream.Close()

	relay(client, upstream)
}

// relay runs the two directional pumps and blocks until both finish.
// Either pump ending, for any reason, closes both connections so the
// other pump's blocked read fails promptly; a stalled direction can never
// leave its peer open.
func relay(client, upstream *websocket.Conn) {
	var once sync.Once
	closeBoth := func() {
		client.Close()
		upstream.Close()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pump(client, upstream, &once, closeBoth)
	}()
	go func() {
		defer wg.Done()
		pump(upstream, client, &once, closeBoth)
	}()
	wg.Wait()
}

// pump copies frames one at a time, preserving message type and order.
// No transformation, no buffering beyond the single in-flight frame.
func pump(src, dst *websocket.Conn, once *sync.Once, closeBoth func()) {
	defer once.Do(closeBoth)
	for {
		messageType, payload, err := src.ReadMessage()
		if err != nil {
			return
		}
		dst.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := dst.WriteMessage(messageType, payload); err != nil {
			return
		}
	}
}

func writeErrorFrame(conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
		time.Now().Add(writeTimeout))
}
