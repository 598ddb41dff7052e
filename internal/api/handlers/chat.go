package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avatarworks/gateway/internal/api/middleware"
	"github.com/avatarworks/gateway/internal/apperr"
	"github.com/avatarworks/gateway/internal/chat"
)

type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	Message string `json:"message"`
}

// AvatarChat is the context-aware path: the session identity and résumé
// excerpt are injected into the prompt.
func (h *ChatHandler) AvatarChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.Validation("invalid request body"))
		return
	}

	token := middleware.SessionToken(r.Context())
	text, err := h.svc.Complete(r.Context(), token, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

// SimpleChat is the anonymous passthrough path.
func (h *ChatHandler) SimpleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.Validation("invalid request body"))
		return
	}

	text, err := h.svc.CompleteAnonymous(r.Context(), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}
