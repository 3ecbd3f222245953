// Package domain contains the core entities, input types, validation rules,
// and error taxonomy of the book catalog service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. The image reference is a weak link: the book
// does not own the image and a nil ImageID is a valid state.
type Book struct {
	ID          uuid.UUID
	Title       string
	Author      string
	Description string
	ImageID     *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Chapter belongs to exactly one book. The (BookID, Number) pair is unique
// and Number ascending is the canonical reading order.
type Chapter struct {
	ID        uuid.UUID
	BookID    uuid.UUID
	Number    int
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image is the relational metadata for a stored cover or illustration.
// The binary payload lives in the media store under the same ID.
type Image struct {
	ID          uuid.UUID
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ImageUpload carries a binary payload and its declared content type
// through validation and into storage.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// CreateBookInput is the validated input for book creation. Author and
// Description are optional; an empty string means absent.
type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	Image       *ImageUpload
}

// CreateChapterInput is the validated input for chapter creation.
type CreateChapterInput struct {
	BookID  uuid.UUID
	Number  int
	Title   string
	Content string
}

// Page bounds a listing request. Offset is zero-based; Limit is the
// maximum page size after clamping against the configured ceiling.
type Page struct {
	Offset int
	Limit  int
}
