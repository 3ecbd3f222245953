package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// ChapterRepository defines the interface for chapter persistence operations.
type ChapterRepository interface {
	// Create inserts a new chapter. A duplicate (book, number) pair yields
	// domain.ErrConflict; a missing parent book yields domain.ErrNotFound.
	Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error)

	// GetByID retrieves a chapter by its identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error)

	// ListByBook returns one page of chapters belonging to bookID, ordered
	// by chapter number ascending, plus the total chapter count for the
	// book. Both are computed against a single database snapshot, which
	// also verifies the book exists: a missing book yields
	// domain.ErrNotFound rather than an empty page.
	ListByBook(ctx context.Context, bookID uuid.UUID, offset, limit int) ([]*domain.Chapter, int64, error)
}
