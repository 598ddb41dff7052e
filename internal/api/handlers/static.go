package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avatarworks/gateway/internal/config"
)

// StaticHandler serves the avatar assets and the single-page app.
// The two asset directories carry opposite caching policies: 3D models
// never change once shipped, modules are hot-reloaded during development.
type StaticHandler struct {
	cfg config.StaticConfig
}

func NewStaticHandler(cfg config.StaticConfig) *StaticHandler {
	return &StaticHandler{cfg: cfg}
}

func (h *StaticHandler) Models(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	h.serveFrom(w, r, h.cfg.ModelsDir)
}

func (h *StaticHandler) Modules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-store")
	h.serveFrom(w, r, h.cfg.ModulesDir)
}

func (h *StaticHandler) Public(w http.ResponseWriter, r *http.Request) {
	h.serveFrom(w, r, h.cfg.PublicDir)
}

func (h *StaticHandler) serveFrom(w http.ResponseWriter, r *http.Request, dir string) {
	name := chi.URLParam(r, "*")
	path, ok := securePath(dir, name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// SPAFallback serves the frontend build: the requested file if it exists,
// index.html otherwise. API paths never fall through to the index.
func (h *StaticHandler) SPAFallback(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if strings.HasPrefix(path, "api/") {
		http.NotFound(w, r)
		return
	}

	if path != "" {
		if full, ok := securePath(h.cfg.BuildDir, path); ok {
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				http.ServeFile(w, r, full)
				return
			}
		}
	}

	http.ServeFile(w, r, filepath.Join(h.cfg.BuildDir, "index.html"))
}

// securePath joins a client path to a base dir, rejecting traversal.
func securePath(dir, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	full := filepath.Join(dir, filepath.Clean("/"+name))
	rel, err := filepath.Rel(dir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return full, true
}
