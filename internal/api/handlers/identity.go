package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/avatarworks/gateway/internal/api/middleware"
	"github.com/avatarworks/gateway/internal/apperr"
	"github.com/avatarworks/gateway/internal/identity"
	"github.com/avatarworks/gateway/internal/session"
	"github.com/avatarworks/gateway/internal/storage"
)

const maxSignupForm = 16 << 20 // 16MB: camera frame plus a résumé

type IdentityHandler struct {
	resolver *identity.Resolver
	sessions *session.Manager
	codec    *session.TokenCodec
	files    storage.Storage
}

func NewIdentityHandler(resolver *identity.Resolver, sessions *session.Manager, codec *session.TokenCodec, files storage.Storage) *IdentityHandler {
	return &IdentityHandler{resolver: resolver, sessions: sessions, codec: codec, files: files}
}

// Recognize matches a captured frame against enrolled identities and, on
// a hit, authenticates the caller's session.
func (h *IdentityHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		writeError(w, r, apperr.Validation("no image provided"))
		return
	}

	res, err := h.resolver.Resolve(r.Context(), req.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch res.Status {
	case identity.StatusKnown:
		token := middleware.SessionToken(r.Context())
		h.sessions.MarkAuthenticated(token, res.IdentityID, res.DisplayName)
		writeJSON(w, http.StatusOK, map[string]string{"status": "known", "name": res.DisplayName})
	case identity.StatusNoFaceDetected:
		writeJSON(w, http.StatusOK, map[string]string{"status": "no_face", "message": "No face detected"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown", "message": "Unknown user detected"})
	}
}

// Signup enrolls a new identity from a multipart form (name, image_data,
// resume) and authenticates the session.
func (h *IdentityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSignupForm); err != nil {
		writeError(w, r, apperr.Validation("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, r, apperr.Validation("resume is required"))
		return
	}
	defer file.Close()

	resumeData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}

	created, err := h.resolver.Enroll(r.Context(), identity.EnrollRequest{
		DisplayName:    r.FormValue("name"),
		ImagePayload:   r.FormValue("image_data"),
		ResumeFilename: header.Filename,
		ResumeData:     resumeData,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token := middleware.SessionToken(r.Context())
	h.sessions.MarkAuthenticated(token, created.ID, created.DisplayName)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "name": created.DisplayName})
}

func (h *IdentityHandler) Username(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r.Context())
	sess, ok := h.sessions.Get(token)
	if !ok || !sess.Authenticated {
		writeError(w, r, apperr.Unauthorized("not authenticated"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": sess.DisplayName})
}

func (h *IdentityHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r.Context())
	h.sessions.Logout(token)
	http.SetCookie(w, h.codec.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Resume serves a previously uploaded résumé back by filename.
func (h *IdentityHandler) Resume(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.files.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, r, apperr.NotFound("document not found"))
			return
		}
		writeError(w, r, apperr.Internal(err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, f)
}
