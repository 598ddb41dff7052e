package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/avatarworks/gateway/internal/models"
)

var ErrNotFound = errors.New("identity not found")

// Store is the durable identity record store. Creates are atomic single
// inserts; identity fields are never updated afterwards, which is what
// lets the in-memory index stay an append-only mirror.
type Store interface {
	Create(ctx context.Context, displayName string, embedding []float32, resumePath string) (models.Identity, error)
	ListAll(ctx context.Context) ([]models.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Identity, error)
	SetResumeText(ctx context.Context, id uuid.UUID, text string) error
}

type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Create(ctx context.Context, displayName string, embedding []float32, resumePath string) (models.Identity, error) {
	id := uuid.New()

	var identity models.Identity
	var vec pgvector.Vector
	err := s.db.QueryRow(ctx,
		`INSERT INTO identities (id, display_name, face_embedding, resume_path)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, display_name, face_embedding, resume_path, resume_text, created_at`,
		id, displayName, pgvector.NewVector(embedding), resumePath,
	).Scan(&identity.ID, &identity.DisplayName, &vec, &identity.ResumePath, &identity.ResumeText, &identity.CreatedAt)
	if err != nil {
		return models.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	identity.FaceEmbedding = vec.Slice()

	return identity, nil
}

func (s *PgStore) ListAll(ctx context.Context) ([]models.Identity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, display_name, face_embedding, resume_path, resume_text, created_at
		 FROM identities ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []models.Identity
	for rows.Next() {
		var identity models.Identity
		var vec pgvector.Vector
		if err := rows.Scan(&identity.ID, &identity.DisplayName, &vec, &identity.ResumePath, &identity.ResumeText, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.FaceEmbedding = vec.Slice()
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (models.Identity, error) {
	var identity models.Identity
	var vec pgvector.Vector
	err := s.db.QueryRow(ctx,
		`SELECT id, display_name, face_embedding, resume_path, resume_text, created_at
		 FROM identities WHERE id = $1`,
		id,
	).Scan(&identity.ID, &identity.DisplayName, &vec, &identity.ResumePath, &identity.ResumeText, &identity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("get identity: %w", err)
	}
	identity.FaceEmbedding = vec.Slice()
	return identity, nil
}

// SetResumeText is written by the extraction worker only. It leaves every
// field the in-memory index mirrors untouched.
func (s *PgStore) SetResumeText(ctx context.Context, id uuid.UUID, text string) error {
	tag, err := s.db.Exec(ctx, "UPDATE identities SET resume_text = $1 WHERE id = $2", text, id)
	if err != nil {
		return fmt.Errorf("set resume text: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
