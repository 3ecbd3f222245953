package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/book-catalog-service/internal/domain"
)

var bookColumns = []string{"id", "title", "author", "description", "image_id", "created_at", "updated_at"}

// Helper to create a valid book for testing.
func newTestBook() *domain.Book {
	now := time.Now().UTC()
	return &domain.Book{
		ID:          uuid.New(),
		Title:       "The Enchiridion",
		Author:      "Epictetus",
		Description: "A short manual of Stoic ethical advice.",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain term passes through", input: "enchiridion", expected: "enchiridion"},
		{name: "percent is escaped", input: "100% wolf", expected: `100\% wolf`},
		{name: "underscore is escaped", input: "snake_case", expected: `snake\_case`},
		{name: "backslash is escaped", input: `back\slash`, expected: `back\\slash`},
		{name: "all metacharacters together", input: `\%_`, expected: `\\\%\_`},
		{name: "empty term stays empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeLikePattern(tt.input))
		})
	}
}

func TestPgBookRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates book successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		now := time.Now().UTC()

		mock.ExpectQuery("INSERT INTO books").
			WithArgs(book.ID, book.Title, book.Author, book.Description, book.ImageID,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(book.ID, now, now))

		result, err := repo.Create(ctx, book)
		require.NoError(t, err)
		assert.Equal(t, book.ID, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigns an ID when none is set", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		book.ID = uuid.Nil
		now := time.Now().UTC()
		assigned := uuid.New()

		mock.ExpectQuery("INSERT INTO books").
			WithArgs(pgxmock.AnyArg(), book.Title, book.Author, book.Description, book.ImageID,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(assigned, now, now))

		result, err := repo.Create(ctx, book)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for nil book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		result, err := repo.Create(ctx, nil)

		assert.Nil(t, result)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "book", validationErr.Field)
	})
}

func TestPgBookRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns book when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectQuery("SELECT .* FROM books WHERE id = \\$1").
			WithArgs(book.ID).
			WillReturnRows(pgxmock.NewRows(bookColumns).AddRow(
				book.ID, book.Title, book.Author, book.Description,
				book.ImageID, book.CreatedAt, book.UpdatedAt,
			))

		result, err := repo.GetByID(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.ID, result.ID)
		assert.Equal(t, book.Title, result.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error when not exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		id := uuid.New()

		mock.ExpectQuery("SELECT .* FROM books WHERE id = \\$1").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.GetByID(ctx, id)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgBookRepository_SearchByTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and count from one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectBeginTx(snapshotReadOptions)
		mock.ExpectQuery("SELECT .* FROM books WHERE title ILIKE \\$1").
			WithArgs("%enchiridion%", 10, 0).
			WillReturnRows(pgxmock.NewRows(bookColumns).AddRow(
				book.ID, book.Title, book.Author, book.Description,
				book.ImageID, book.CreatedAt, book.UpdatedAt,
			))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM books WHERE title ILIKE \\$1").
			WithArgs("%enchiridion%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectCommit()

		books, count, err := repo.SearchByTitle(ctx, "enchiridion", 0, 10)
		require.NoError(t, err)
		assert.Len(t, books, 1)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, book.Title, books[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("escapes wildcard characters in the term", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectBeginTx(snapshotReadOptions)
		mock.ExpectQuery("SELECT .* FROM books WHERE title ILIKE \\$1").
			WithArgs(`%100\% wolf\_pack%`, 10, 0).
			WillReturnRows(pgxmock.NewRows(bookColumns))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM books WHERE title ILIKE \\$1").
			WithArgs(`%100\% wolf\_pack%`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectCommit()

		books, count, err := repo.SearchByTitle(ctx, "100% wolf_pack", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, books)
		assert.Equal(t, int64(0), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty term matches everything", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectBeginTx(snapshotReadOptions)
		mock.ExpectQuery("SELECT .* FROM books WHERE title ILIKE \\$1").
			WithArgs("%%", 5, 0).
			WillReturnRows(pgxmock.NewRows(bookColumns).AddRow(
				book.ID, book.Title, book.Author, book.Description,
				book.ImageID, book.CreatedAt, book.UpdatedAt,
			))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM books WHERE title ILIKE \\$1").
			WithArgs("%%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))
		mock.ExpectCommit()

		books, count, err := repo.SearchByTitle(ctx, "", 0, 5)
		require.NoError(t, err)
		assert.Len(t, books, 1)
		assert.Equal(t, int64(42), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the count query fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectBeginTx(snapshotReadOptions)
		mock.ExpectQuery("SELECT .* FROM books WHERE title ILIKE \\$1").
			WithArgs("%stoic%", 10, 0).
			WillReturnRows(pgxmock.NewRows(bookColumns))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM books WHERE title ILIKE \\$1").
			WithArgs("%stoic%").
			WillReturnError(errors.New("database error"))
		mock.ExpectRollback()

		books, count, err := repo.SearchByTitle(ctx, "stoic", 0, 10)
		assert.Nil(t, books)
		assert.Equal(t, int64(0), count)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count books")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for non-positive limit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		books, count, err := repo.SearchByTitle(ctx, "stoic", 0, 0)
		assert.Nil(t, books)
		assert.Equal(t, int64(0), count)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "limit", validationErr.Field)
	})

	t.Run("returns validation error for negative offset", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		books, count, err := repo.SearchByTitle(ctx, "stoic", -1, 10)
		assert.Nil(t, books)
		assert.Equal(t, int64(0), count)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "offset", validationErr.Field)
	})
}
