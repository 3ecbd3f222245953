//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/book-catalog-service/internal/domain"
	"github.com/helixir/book-catalog-service/internal/repository"
)

func mustCreateBook(t *testing.T, repo repository.BookRepository, title string) *domain.Book {
	t.Helper()
	book, err := repo.Create(context.Background(), &domain.Book{Title: title})
	require.NoError(t, err)
	return book
}

func TestPgBookRepository_Integration(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	repo := repository.NewPgBookRepository(testPool)
	ctx := context.Background()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		created, err := repo.Create(ctx, &domain.Book{
			Title:       "Adventure Time",
			Author:      "Pendleton Ward",
			Description: "Land of Ooo",
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Adventure Time", got.Title)
		assert.Equal(t, "Pendleton Ward", got.Author)
		assert.Nil(t, got.ImageID)
	})

	t.Run("Get missing book returns not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Create with dangling image reference returns not found", func(t *testing.T) {
		missing := uuid.New()
		_, err := repo.Create(ctx, &domain.Book{Title: "Orphan", ImageID: &missing})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgBookRepository_SearchIntegration(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	repo := repository.NewPgBookRepository(testPool)
	ctx := context.Background()

	mustCreateBook(t, repo, "Adventure Time")
	mustCreateBook(t, repo, "adventure club")
	mustCreateBook(t, repo, "The Great Adventure")
	mustCreateBook(t, repo, "Cooking Basics")
	mustCreateBook(t, repo, "100% wolf")

	t.Run("case-insensitive substring match", func(t *testing.T) {
		books, total, err := repo.SearchByTitle(ctx, "ADVENTURE", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, books, 3)
	})

	t.Run("deterministic ordering by title", func(t *testing.T) {
		books, _, err := repo.SearchByTitle(ctx, "adventure", 0, 10)
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Adventure Time", books[0].Title)
		assert.Equal(t, "The Great Adventure", books[1].Title)
		assert.Equal(t, "adventure club", books[2].Title)
	})

	t.Run("pagination window with full count", func(t *testing.T) {
		books, total, err := repo.SearchByTitle(ctx, "adventure", 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, books, 1)
		assert.Equal(t, "The Great Adventure", books[0].Title)
	})

	t.Run("offset past the end returns empty page with count", func(t *testing.T) {
		books, total, err := repo.SearchByTitle(ctx, "adventure", 10, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, books)
	})

	t.Run("percent in the term is literal", func(t *testing.T) {
		books, total, err := repo.SearchByTitle(ctx, "100%", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "100% wolf", books[0].Title)
	})

	t.Run("underscore in the term is literal", func(t *testing.T) {
		mustCreateBook(t, repo, "snake_case style")
		mustCreateBook(t, repo, "snakeXcase style")

		books, total, err := repo.SearchByTitle(ctx, "snake_case", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "snake_case style", books[0].Title)
	})

	t.Run("equal titles come back in creation order", func(t *testing.T) {
		first := mustCreateBook(t, repo, "Duplicate Edition")
		second := mustCreateBook(t, repo, "Duplicate Edition")
		third := mustCreateBook(t, repo, "Duplicate Edition")

		books, total, err := repo.SearchByTitle(ctx, "Duplicate Edition", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, books, 3)
		assert.Equal(t, first.ID, books[0].ID)
		assert.Equal(t, second.ID, books[1].ID)
		assert.Equal(t, third.ID, books[2].ID)
	})
}

// TestPgBookRepository_SearchSnapshotConsistency interleaves committed
// inserts with repeated searches. The page and the count are read inside
// one repeatable-read transaction, so every observation must agree with
// itself no matter how many writers land between queries.
func TestPgBookRepository_SearchSnapshotConsistency(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	repo := repository.NewPgBookRepository(testPool)
	ctx := context.Background()

	const (
		marker       = "zephyr chronicle"
		writerBooks  = 40
		observations = 25
	)

	writerErr := make(chan error, 1)
	go func() {
		for i := 0; i < writerBooks; i++ {
			_, err := repo.Create(ctx, &domain.Book{
				Title: fmt.Sprintf("%s vol %d", marker, i),
			})
			if err != nil {
				writerErr <- err
				return
			}
		}
		writerErr <- nil
	}()

	// The limit exceeds everything the writer will ever insert, so a
	// consistent snapshot always has page length equal to the count.
	for i := 0; i < observations; i++ {
		books, total, err := repo.SearchByTitle(ctx, marker, 0, 100)
		require.NoError(t, err)
		assert.Equal(t, int(total), len(books),
			"page and count must come from the same snapshot")
		for _, b := range books {
			assert.Contains(t, b.Title, marker)
		}
	}

	require.NoError(t, <-writerErr)

	books, total, err := repo.SearchByTitle(ctx, marker, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(writerBooks), total)
	assert.Len(t, books, writerBooks)
}

func TestPgChapterRepository_Integration(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	bookRepo := repository.NewPgBookRepository(testPool)
	repo := repository.NewPgChapterRepository(testPool)
	ctx := context.Background()

	book := mustCreateBook(t, bookRepo, "The Enchiridion")

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		created, err := repo.Create(ctx, &domain.Chapter{
			BookID:  book.ID,
			Number:  1,
			Title:   "Beginnings",
			Content: "It was a dark and stormy night.",
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, book.ID, got.BookID)
		assert.Equal(t, 1, got.Number)
		assert.Equal(t, "It was a dark and stormy night.", got.Content)
	})

	t.Run("duplicate number in the same book conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, &domain.Chapter{
			BookID: book.ID, Number: 1, Title: "Again", Content: "x",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConflict)

		var conflict *domain.ChapterNumberConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 1, conflict.Number)
	})

	t.Run("same number in another book is fine", func(t *testing.T) {
		other := mustCreateBook(t, bookRepo, "A Second Book")
		_, err := repo.Create(ctx, &domain.Chapter{
			BookID: other.ID, Number: 1, Title: "One", Content: "x",
		})
		require.NoError(t, err)
	})

	t.Run("Create against missing book returns not found", func(t *testing.T) {
		_, err := repo.Create(ctx, &domain.Chapter{
			BookID: uuid.New(), Number: 1, Title: "Ghost", Content: "x",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgChapterRepository_ListIntegration(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	bookRepo := repository.NewPgBookRepository(testPool)
	repo := repository.NewPgChapterRepository(testPool)
	ctx := context.Background()

	book := mustCreateBook(t, bookRepo, "Serialized Novel")

	// Insert out of order; listing must come back in reading order.
	for _, n := range []int{3, 1, 5, 2, 4} {
		_, err := repo.Create(ctx, &domain.Chapter{
			BookID:  book.ID,
			Number:  n,
			Title:   fmt.Sprintf("Chapter %d", n),
			Content: "...",
		})
		require.NoError(t, err)
	}

	t.Run("ordered by number with full count", func(t *testing.T) {
		chapters, total, err := repo.ListByBook(ctx, book.ID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, chapters, 5)
		for i, ch := range chapters {
			assert.Equal(t, i+1, ch.Number)
		}
	})

	t.Run("pagination window", func(t *testing.T) {
		chapters, total, err := repo.ListByBook(ctx, book.ID, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, chapters, 2)
		assert.Equal(t, 3, chapters[0].Number)
		assert.Equal(t, 4, chapters[1].Number)
	})

	t.Run("empty book yields empty page not an error", func(t *testing.T) {
		empty := mustCreateBook(t, bookRepo, "Unwritten")
		chapters, total, err := repo.ListByBook(ctx, empty.ID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, chapters)
	})

	t.Run("missing book yields not found", func(t *testing.T) {
		_, _, err := repo.ListByBook(ctx, uuid.New(), 0, 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgImageRepository_Integration(t *testing.T) {
	cleanTables(t, "chapters", "books", "images")
	repo := repository.NewPgImageRepository(testPool)
	bookRepo := repository.NewPgBookRepository(testPool)
	ctx := context.Background()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		created, err := repo.Create(ctx, &domain.Image{
			ID:          uuid.New(),
			ContentType: "image/png",
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", got.ContentType)
	})

	t.Run("book can reference a stored image", func(t *testing.T) {
		image, err := repo.Create(ctx, &domain.Image{
			ID:          uuid.New(),
			ContentType: "image/jpeg",
		})
		require.NoError(t, err)

		book, err := bookRepo.Create(ctx, &domain.Book{
			Title:   "Illustrated Edition",
			ImageID: &image.ID,
		})
		require.NoError(t, err)

		got, err := bookRepo.GetByID(ctx, book.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ImageID)
		assert.Equal(t, image.ID, *got.ImageID)
	})
}
