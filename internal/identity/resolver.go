package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/avatarworks/gateway/internal/apperr"
	"github.com/avatarworks/gateway/internal/face"
	"github.com/avatarworks/gateway/internal/models"
	"github.com/avatarworks/gateway/internal/storage"
)

type Status string

const (
	StatusKnown          Status = "known"
	StatusUnknown        Status = "unknown"
	StatusNoFaceDetected Status = "no_face"
)

type Resolution struct {
	Status      Status
	IdentityID  uuid.UUID
	DisplayName string
}

// Enqueuer schedules post-enrollment work (résumé text extraction).
type Enqueuer interface {
	EnqueueResumeExtract(identityID uuid.UUID) error
}

// Resolver turns captured images into identities. Matching walks the
// index snapshot in insertion order and the first entry within tolerance
// wins; earlier enrollments deliberately shadow later ones.
type Resolver struct {
	store     Store
	index     *Index
	extractor face.Extractor
	matcher   face.Matcher
	files     storage.Storage
	queue     Enqueuer
}

func NewResolver(store Store, index *Index, extractor face.Extractor, matcher face.Matcher, files storage.Storage, queue Enqueuer) *Resolver {
	return &Resolver{
		store:     store,
		index:     index,
		extractor: extractor,
		matcher:   matcher,
		files:     files,
		queue:     queue,
	}
}

func (r *Resolver) Resolve(ctx context.Context, imagePayload string) (Resolution, error) {
	image, err := face.DecodeImagePayload(imagePayload)
	if err != nil {
		return Resolution{}, apperr.Wrap(apperr.KindValidation, "invalid image payload", err)
	}

	probes, err := r.extractor.Embeddings(ctx, image)
	if err != nil {
		return Resolution{}, apperr.Upstream("face service unavailable", err)
	}
	if len(probes) == 0 {
		return Resolution{Status: StatusNoFaceDetected}, nil
	}

	snapshot := r.index.Snapshot()
	for _, probe := range probes {
		for _, known := range snapshot {
			if r.matcher.Match(known.FaceEmbedding, probe) {
				return Resolution{
					Status:      StatusKnown,
					IdentityID:  known.ID,
					DisplayName: known.DisplayName,
				}, nil
			}
		}
	}

	return Resolution{Status: StatusUnknown}, nil
}

type EnrollRequest struct {
	DisplayName    string
	ImagePayload   string
	ResumeFilename string
	ResumeData     []byte
}

func (r *Resolver) Enroll(ctx context.Context, req EnrollRequest) (models.Identity, error) {
	if strings.TrimSpace(req.DisplayName) == "" {
		return models.Identity{}, apperr.Validation("name is required")
	}
	if len(req.ResumeData) == 0 {
		return models.Identity{}, apperr.Validation("resume is required")
	}
	if !storage.AllowedResumeFile(req.ResumeFilename) {
		return models.Identity{}, apperr.Validation("resume must be a PDF or plain-text file")
	}

	image, err := face.DecodeImagePayload(req.ImagePayload)
	if err != nil {
		return models.Identity{}, apperr.Wrap(apperr.KindValidation, "invalid image payload", err)
	}

	embeddings, err := r.extractor.Embeddings(ctx, image)
	if err != nil {
		return models.Identity{}, apperr.Upstream("face service unavailable", err)
	}
	// No face means no store write at all.
	if len(embeddings) == 0 {
		return models.Identity{}, apperr.Validation("no face detected")
	}

	resumePath, err := r.files.Save(ctx, req.ResumeFilename, req.ResumeData)
	if err != nil {
		return models.Identity{}, apperr.Internal(fmt.Errorf("save resume: %w", err))
	}

	identity, err := r.store.Create(ctx, strings.TrimSpace(req.DisplayName), embeddings[0], resumePath)
	if err != nil {
		return models.Identity{}, apperr.Internal(err)
	}

	// The append publishes before Enroll returns: any resolve started
	// after this sees the new identity.
	r.index.Append(identity)

	if r.queue != nil {
		if err := r.queue.EnqueueResumeExtract(identity.ID); err != nil {
			slog.Warn("failed to enqueue resume extraction", "identity_id", identity.ID, "error", err)
		}
	}

	return identity, nil
}
