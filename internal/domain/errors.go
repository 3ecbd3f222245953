package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates that a write violated a uniqueness invariant.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates that the request lacks a valid API key.
	// The same error is returned for absent, malformed, and wrong keys.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIntegrity indicates that the relational metadata and the media
	// store disagree about the existence of a blob.
	ErrIntegrity = errors.New("integrity failure")

	// ErrStorage indicates an unexpected database or filesystem failure.
	ErrStorage = errors.New("storage failure")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity. Entity is one
// of "book", "chapter", "image", or "image blob".
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a NotFoundError for the given entity and ID.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ChapterNumberConflictError reports an attempt to insert a second chapter
// with the same number for one book.
type ChapterNumberConflictError struct {
	BookID string
	Number int
}

// NewChapterNumberConflictError creates a ChapterNumberConflictError.
func NewChapterNumberConflictError(bookID string, number int) *ChapterNumberConflictError {
	return &ChapterNumberConflictError{BookID: bookID, Number: number}
}

// Error implements the error interface.
func (e *ChapterNumberConflictError) Error() string {
	return fmt.Sprintf("chapter number %d already exists for book %s", e.Number, e.BookID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ChapterNumberConflictError) Unwrap() error {
	return ErrConflict
}

// IntegrityError reports a metadata row whose corresponding blob is missing
// (or vice versa). It signals an interrupted two-step create, not a
// legitimate absence.
type IntegrityError struct {
	Entity string
	ID     string
	Detail string
}

// NewIntegrityError creates an IntegrityError.
func NewIntegrityError(entity, id, detail string) *IntegrityError {
	return &IntegrityError{Entity: entity, ID: id, Detail: detail}
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity failure for %s %s: %s", e.Entity, e.ID, e.Detail)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}
