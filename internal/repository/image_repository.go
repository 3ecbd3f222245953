package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// ImageRepository defines the interface for image metadata persistence.
// Image bytes live in the media store; this repository only records what
// was stored and with which content type.
type ImageRepository interface {
	// Create inserts metadata for a stored image.
	Create(ctx context.Context, image *domain.Image) (*domain.Image, error)

	// GetByID retrieves image metadata by its identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error)
}
