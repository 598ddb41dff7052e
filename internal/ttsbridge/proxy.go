package ttsbridge

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avatarworks/gateway/internal/config"
)

// HTTPProxy forwards synthesis requests to the provider's REST streaming
// endpoint and copies the audio bytes straight back. It complements the
// websocket bridge for clients that prefer one-shot requests.
type HTTPProxy struct {
	cfg        config.TTSConfig
	httpClient *http.Client
}

func NewHTTPProxy(cfg config.TTSConfig) *HTTPProxy {
	return &HTTPProxy{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *HTTPProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.cfg.APIKey == "" || p.cfg.VoiceID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing ELEVENLABS_API_KEY or VOICE_ID"})
		return
	}

	upstreamURL := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", p.cfg.HTTPBase, url.PathEscape(p.cfg.VoiceID))

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, upstreamURL, r.Body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to build TTS request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "TTS provider unreachable"})
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}
