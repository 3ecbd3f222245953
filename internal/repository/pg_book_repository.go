package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/book-catalog-service/internal/database"
	"github.com/helixir/book-catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ BookRepository = (*PgBookRepository)(nil)

// likeEscaper neutralizes the LIKE metacharacters so a search term is
// always matched as a literal substring. Backslash must be replaced first;
// it doubles as the ESCAPE character in the queries below.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern returns term with %, _ and \ escaped for use inside a
// LIKE or ILIKE pattern with ESCAPE '\'.
func escapeLikePattern(term string) string {
	return likeEscaper.Replace(term)
}

// PgBookRepository is a PostgreSQL implementation of BookRepository.
type PgBookRepository struct {
	db TxBeginner
}

// NewPgBookRepository creates a new PostgreSQL book repository.
func NewPgBookRepository(db TxBeginner) *PgBookRepository {
	return &PgBookRepository{db: db}
}

// Create inserts a new book.
func (r *PgBookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.NewValidationError("book", "book cannot be nil")
	}

	now := time.Now().UTC()
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	query := `
		INSERT INTO books (id, title, author, description, image_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.ImageID,
		now,
		now,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.NewNotFoundError("image", imageIDString(book.ImageID))
		}
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}

	return book, nil
}

// GetByID retrieves a book by its UUID.
func (r *PgBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `
		SELECT id, title, author, description, image_id, created_at, updated_at
		FROM books
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", id.String())
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// SearchByTitle returns one page of books matching term plus the total
// match count. Both statements run inside a single repeatable-read,
// read-only transaction so the count always agrees with the page.
func (r *PgBookRepository) SearchByTitle(ctx context.Context, term string, offset, limit int) ([]*domain.Book, int64, error) {
	if limit <= 0 {
		return nil, 0, domain.NewValidationError("limit", "limit must be positive")
	}
	if offset < 0 {
		return nil, 0, domain.NewValidationError("offset", "offset cannot be negative")
	}

	pattern := "%" + escapeLikePattern(term) + "%"

	books := make([]*domain.Book, 0, limit)
	var totalCount int64

	err := database.InTx(ctx, r.db, snapshotReadOptions, func(tx pgx.Tx) error {
		pageQuery := `
			SELECT id, title, author, description, image_id, created_at, updated_at
			FROM books
			WHERE title ILIKE $1 ESCAPE '\'
			ORDER BY title ASC, created_at ASC, id ASC
			LIMIT $2 OFFSET $3`

		rows, err := tx.Query(ctx, pageQuery, pattern, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to search books: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			book, err := scanBookFromRows(rows)
			if err != nil {
				return fmt.Errorf("failed to scan book: %w", err)
			}
			books = append(books, book)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating books: %w", err)
		}

		countQuery := `SELECT COUNT(*) FROM books WHERE title ILIKE $1 ESCAPE '\'`
		if err := tx.QueryRow(ctx, countQuery, pattern).Scan(&totalCount); err != nil {
			return fmt.Errorf("failed to count books: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return books, totalCount, nil
}

// imageIDString formats an optional image reference for error messages.
func imageIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// scanBook scans a single row into a Book.
func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.Description,
		&book.ImageID, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// scanBookFromRows scans the current row from pgx.Rows into a Book.
func scanBookFromRows(rows pgx.Rows) (*domain.Book, error) {
	var book domain.Book
	err := rows.Scan(
		&book.ID, &book.Title, &book.Author, &book.Description,
		&book.ImageID, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}
