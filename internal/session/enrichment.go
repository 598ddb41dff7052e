package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/avatarworks/gateway/internal/cache"
	"github.com/avatarworks/gateway/internal/identity"
)

// EnrichmentLimit bounds how much résumé text is injected into a prompt.
const EnrichmentLimit = 2000

// EnrichmentReader produces the bounded résumé excerpt for an identity.
// It prefers the worker-extracted text and falls back to reading the raw
// file; missing or unreadable résumés yield an empty snippet, never an
// error.
type EnrichmentReader struct {
	store identity.Store
	cache *cache.EnrichmentCache
}

func NewEnrichmentReader(store identity.Store, c *cache.EnrichmentCache) *EnrichmentReader {
	return &EnrichmentReader{store: store, cache: c}
}

func (r *EnrichmentReader) Enrichment(ctx context.Context, identityID uuid.UUID) string {
	if snippet, ok := r.cache.Get(ctx, identityID); ok {
		return snippet
	}

	rec, err := r.store.GetByID(ctx, identityID)
	if err != nil {
		slog.Warn("enrichment lookup failed", "identity_id", identityID, "error", err)
		return ""
	}

	snippet := truncate(rec.ResumeText)
	if snippet == "" && rec.ResumePath != "" {
		snippet = truncate(readFilePrefix(rec.ResumePath))
	}

	r.cache.Set(ctx, identityID, snippet)
	return snippet
}

// truncate cuts at the rune boundary at or before the limit so a
// multibyte character is never split mid-sequence.
func truncate(s string) string {
	if len(s) <= EnrichmentLimit {
		return s
	}
	n := EnrichmentLimit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func readFilePrefix(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	// A few bytes past the limit so truncate sees where the rune
	// straddling it ends.
	buf := make([]byte, EnrichmentLimit+utf8.UTFMax)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ""
	}
	return string(buf[:n])
}
