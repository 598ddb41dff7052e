package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/avatarworks/gateway/internal/cache"
	"github.com/avatarworks/gateway/internal/identity"
	"github.com/avatarworks/gateway/pkg/textextract"
)

// ResumeExtractHandler pulls text out of an uploaded résumé so the chat
// relay can inject it without parsing files on the request path.
type ResumeExtractHandler struct {
	store identity.Store
	cache *cache.EnrichmentCache
}

func NewResumeExtractHandler(store identity.Store, c *cache.EnrichmentCache) *ResumeExtractHandler {
	return &ResumeExtractHandler{store: store, cache: c}
}

func (h *ResumeExtractHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ResumeExtractPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	id, err := uuid.Parse(payload.IdentityID)
	if err != nil {
		return fmt.Errorf("parse identity id: %w", err)
	}

	rec, err := h.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	if rec.ResumePath == "" {
		return nil
	}

	f, err := os.Open(rec.ResumePath)
	if err != nil {
		return fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat resume: %w", err)
	}

	extracted, err := textextract.Extract(f, info.Size(), filepath.Ext(rec.ResumePath))
	if err != nil {
		// Extraction failures are not retried forever: enrichment falls
		// back to the raw file prefix.
		slog.Warn("resume extraction failed", "identity_id", id, "error", err)
		return nil
	}

	if err := h.store.SetResumeText(ctx, id, extracted.Content); err != nil {
		return fmt.Errorf("store resume text: %w", err)
	}

	h.cache.Invalidate(ctx, id)
	slog.Info("resume text extracted", "identity_id", id, "bytes", len(extracted.Content))
	return nil
}

// Mux wires every task handler for the worker binary.
func Mux(h *ResumeExtractHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeResumeExtract, h)
	return mux
}
