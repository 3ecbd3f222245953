package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ ImageRepository = (*PgImageRepository)(nil)

// PgImageRepository is a PostgreSQL implementation of ImageRepository.
type PgImageRepository struct {
	db DBTX
}

// NewPgImageRepository creates a new PostgreSQL image repository.
func NewPgImageRepository(db DBTX) *PgImageRepository {
	return &PgImageRepository{db: db}
}

// Create inserts metadata for a stored image.
func (r *PgImageRepository) Create(ctx context.Context, image *domain.Image) (*domain.Image, error) {
	if image == nil {
		return nil, domain.NewValidationError("image", "image cannot be nil")
	}
	if image.ContentType == "" {
		return nil, domain.NewValidationError("content_type", "content type is required")
	}

	now := time.Now().UTC()
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}

	query := `
		INSERT INTO images (id, content_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		image.ID,
		image.ContentType,
		now,
		now,
	).Scan(&image.ID, &image.CreatedAt, &image.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}

	return image, nil
}

// GetByID retrieves image metadata by its UUID.
func (r *PgImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	query := `
		SELECT id, content_type, created_at, updated_at
		FROM images
		WHERE id = $1`

	var image domain.Image
	err := r.db.QueryRow(ctx, query, id).Scan(
		&image.ID, &image.ContentType, &image.CreatedAt, &image.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("image", id.String())
		}
		return nil, fmt.Errorf("failed to get image by ID: %w", err)
	}

	return &image, nil
}
