package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an enrolled visitor: a display name, the face embedding
// captured at enrollment, and an optional résumé on disk. Identity rows
// are immutable after creation except for ResumeText, which the
// extraction worker fills in asynchronously.
type Identity struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	FaceEmbedding []float32 `json:"-" db:"face_embedding"`
	ResumePath    string    `json:"resume_path,omitempty" db:"resume_path"`
	ResumeText    string    `json:"-" db:"resume_text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
