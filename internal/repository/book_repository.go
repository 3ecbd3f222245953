package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book and returns it with the generated
	// identifier and server-assigned timestamps.
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)

	// GetByID retrieves a book by its identifier. Absence is a normal
	// outcome and surfaces as domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// SearchByTitle returns one page of books whose title contains term as
	// a case-insensitive literal substring, plus the total match count.
	// Page and count are computed against a single database snapshot.
	// Ordering is title ascending, then creation time, then id.
	SearchByTitle(ctx context.Context, term string, offset, limit int) ([]*domain.Book, int64, error)
}
