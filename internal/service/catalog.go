// Package service orchestrates the business logic of the book catalog:
// input validation, the image storage pipeline, and domain metrics sit
// here, between the HTTP layer and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/book-catalog-service/internal/domain"
	"github.com/helixir/book-catalog-service/internal/observability"
	"github.com/helixir/book-catalog-service/internal/repository"
)

// BlobStore is the binary side of image storage. The media store
// implements it; tests substitute an in-memory one.
type BlobStore interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
}

// CatalogService implements the catalog operations. All inputs are
// validated before any storage side effect.
type CatalogService struct {
	books    repository.BookRepository
	chapters repository.ChapterRepository
	images   repository.ImageRepository
	blobs    BlobStore
	validate *domain.Validator
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewCatalogService creates a CatalogService. metrics may be nil, in which
// case no metrics are recorded.
func NewCatalogService(
	books repository.BookRepository,
	chapters repository.ChapterRepository,
	images repository.ImageRepository,
	blobs BlobStore,
	validate *domain.Validator,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		books:    books,
		chapters: chapters,
		images:   images,
		blobs:    blobs,
		validate: validate,
		metrics:  metrics,
		logger:   logger.With().Str("component", "catalog-service").Logger(),
	}
}

// SearchBooks returns one page of books whose title contains term as a
// case-insensitive literal substring, plus the total match count for the
// same snapshot.
func (s *CatalogService) SearchBooks(ctx context.Context, term string, page domain.Page) ([]*domain.Book, int64, error) {
	if err := s.validate.ValidateSearchTerm(term); err != nil {
		return nil, 0, err
	}
	if err := s.validate.ValidatePage(page); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	books, total, err := s.books.SearchByTitle(ctx, term, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, err
	}

	if s.metrics != nil {
		s.metrics.RecordSearch(total, time.Since(start).Seconds())
	}

	s.logger.Debug().
		Int("page_size", len(books)).
		Int64("total", total).
		Msg("title search completed")

	return books, total, nil
}

// ListChapters returns one page of chapters for bookID in reading order,
// plus the book's total chapter count. A missing book is an error, not an
// empty page.
func (s *CatalogService) ListChapters(ctx context.Context, bookID uuid.UUID, page domain.Page) ([]*domain.Chapter, int64, error) {
	if err := s.validate.ValidatePage(page); err != nil {
		return nil, 0, err
	}
	return s.chapters.ListByBook(ctx, bookID, page.Offset, page.Limit)
}

// GetChapter retrieves a single chapter by its identifier.
func (s *CatalogService) GetChapter(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	return s.chapters.GetByID(ctx, id)
}

// GetBook retrieves a single book by its identifier.
func (s *CatalogService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.books.GetByID(ctx, id)
}

// CreateBook creates a book, storing and binding its cover image first
// when one is supplied. The image pipeline is metadata row, then blob,
// then the book row referencing the image.
func (s *CatalogService) CreateBook(ctx context.Context, in domain.CreateBookInput) (*domain.Book, error) {
	if err := s.validate.ValidateCreateBook(in); err != nil {
		return nil, err
	}

	book := &domain.Book{
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
	}

	if in.Image != nil {
		image, err := s.storeImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		book.ImageID = &image.ID
	}

	created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordBookCreated()
	}

	bookLogger := observability.WithBookContext(s.logger, created.ID.String())
	bookLogger.Info().Msg("book created")

	return created, nil
}

// CreateChapter creates a chapter under an existing book. A duplicate
// (book, number) pair yields domain.ErrConflict.
func (s *CatalogService) CreateChapter(ctx context.Context, in domain.CreateChapterInput) (*domain.Chapter, error) {
	if err := s.validate.ValidateCreateChapter(in); err != nil {
		return nil, err
	}

	chapter := &domain.Chapter{
		BookID:  in.BookID,
		Number:  in.Number,
		Title:   in.Title,
		Content: in.Content,
	}

	created, err := s.chapters.Create(ctx, chapter)
	if err != nil {
		if s.metrics != nil && errors.Is(err, domain.ErrConflict) {
			s.metrics.RecordChapterConflict()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordChapterCreated()
	}

	chapterLogger := observability.WithChapterContext(s.logger, created.BookID.String(), created.Number)
	chapterLogger.Info().Msg("chapter created")

	return created, nil
}

// GetImage returns the bytes and content type of a stored image. A
// metadata row without its blob is an integrity failure, distinct from a
// plain not-found.
func (s *CatalogService) GetImage(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := s.blobs.Load(ctx, image.ID.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if s.metrics != nil {
				s.metrics.RecordIntegrityFailure()
			}
			imageLogger := observability.WithImageContext(s.logger, image.ID.String(), image.ContentType)
			imageLogger.Error().Msg("image metadata present but blob missing")
			return nil, "", domain.NewIntegrityError("image", image.ID.String(), "metadata present but blob missing")
		}
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.RecordImageServed(image.ContentType)
	}

	return data, image.ContentType, nil
}

// storeImage runs the two-step image pipeline: metadata row first, blob
// second. A blob failure after the metadata insert leaves an orphan row
// that GetImage reports as an integrity failure.
func (s *CatalogService) storeImage(ctx context.Context, upload domain.ImageUpload) (*domain.Image, error) {
	image, err := s.images.Create(ctx, &domain.Image{
		ID:          uuid.New(),
		ContentType: upload.ContentType,
	})
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Save(ctx, image.ID.String(), upload.Data); err != nil {
		imageLogger := observability.WithImageContext(s.logger, image.ID.String(), image.ContentType)
		imageLogger.Error().Err(err).Msg("blob save failed after metadata insert")
		return nil, fmt.Errorf("failed to save image blob: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordImageStored(image.ContentType, len(upload.Data))
	}

	return image, nil
}
