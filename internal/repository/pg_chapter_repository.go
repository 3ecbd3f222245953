package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/book-catalog-service/internal/database"
	"github.com/helixir/book-catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ ChapterRepository = (*PgChapterRepository)(nil)

// PgChapterRepository is a PostgreSQL implementation of ChapterRepository.
type PgChapterRepository struct {
	db TxBeginner
}

// NewPgChapterRepository creates a new PostgreSQL chapter repository.
func NewPgChapterRepository(db TxBeginner) *PgChapterRepository {
	return &PgChapterRepository{db: db}
}

// Create inserts a new chapter. The chapters table carries a unique
// constraint on (book_id, number) and a foreign key to books, so concurrent
// inserts of the same number resolve to exactly one winner.
func (r *PgChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	if chapter == nil {
		return nil, domain.NewValidationError("chapter", "chapter cannot be nil")
	}

	now := time.Now().UTC()
	if chapter.ID == uuid.Nil {
		chapter.ID = uuid.New()
	}

	query := `
		INSERT INTO chapters (id, book_id, number, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		chapter.ID,
		chapter.BookID,
		chapter.Number,
		chapter.Title,
		chapter.Content,
		now,
		now,
	).Scan(&chapter.ID, &chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, domain.NewChapterNumberConflictError(chapter.BookID.String(), chapter.Number)
			case "23503":
				return nil, domain.NewNotFoundError("book", chapter.BookID.String())
			}
		}
		return nil, fmt.Errorf("failed to insert chapter: %w", err)
	}

	return chapter, nil
}

// GetByID retrieves a chapter by its UUID.
func (r *PgChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	query := `
		SELECT id, book_id, number, title, content, created_at, updated_at
		FROM chapters
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	chapter, err := scanChapter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("chapter", id.String())
		}
		return nil, fmt.Errorf("failed to get chapter by ID: %w", err)
	}

	return chapter, nil
}

// ListByBook returns one page of chapters for bookID plus the total count.
// The existence check, page and count all run inside one repeatable-read,
// read-only transaction so a book deleted mid-request cannot produce an
// empty page that looks like a book with no chapters.
func (r *PgChapterRepository) ListByBook(ctx context.Context, bookID uuid.UUID, offset, limit int) ([]*domain.Chapter, int64, error) {
	if limit <= 0 {
		return nil, 0, domain.NewValidationError("limit", "limit must be positive")
	}
	if offset < 0 {
		return nil, 0, domain.NewValidationError("offset", "offset cannot be negative")
	}

	chapters := make([]*domain.Chapter, 0, limit)
	var totalCount int64

	err := database.InTx(ctx, r.db, snapshotReadOptions, func(tx pgx.Tx) error {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
		if err := tx.QueryRow(ctx, existsQuery, bookID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check book existence: %w", err)
		}
		if !exists {
			return domain.NewNotFoundError("book", bookID.String())
		}

		pageQuery := `
			SELECT id, book_id, number, title, content, created_at, updated_at
			FROM chapters
			WHERE book_id = $1
			ORDER BY number ASC
			LIMIT $2 OFFSET $3`

		rows, err := tx.Query(ctx, pageQuery, bookID, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list chapters: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			chapter, err := scanChapterFromRows(rows)
			if err != nil {
				return fmt.Errorf("failed to scan chapter: %w", err)
			}
			chapters = append(chapters, chapter)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating chapters: %w", err)
		}

		countQuery := `SELECT COUNT(*) FROM chapters WHERE book_id = $1`
		if err := tx.QueryRow(ctx, countQuery, bookID).Scan(&totalCount); err != nil {
			return fmt.Errorf("failed to count chapters: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return chapters, totalCount, nil
}

// scanChapter scans a single row into a Chapter.
func scanChapter(row pgx.Row) (*domain.Chapter, error) {
	var chapter domain.Chapter
	err := row.Scan(
		&chapter.ID, &chapter.BookID, &chapter.Number, &chapter.Title,
		&chapter.Content, &chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// scanChapterFromRows scans the current row from pgx.Rows into a Chapter.
func scanChapterFromRows(rows pgx.Rows) (*domain.Chapter, error) {
	var chapter domain.Chapter
	err := rows.Scan(
		&chapter.ID, &chapter.BookID, &chapter.Number, &chapter.Title,
		&chapter.Content, &chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}
