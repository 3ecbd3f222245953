package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", NewValidationError("title", "must be non-empty"), ErrInvalidInput},
		{"not found", NewNotFoundError("book", "abc"), ErrNotFound},
		{"chapter conflict", NewChapterNumberConflictError("abc", 3), ErrConflict},
		{"integrity", NewIntegrityError("image", "abc", "blob missing"), ErrIntegrity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)

			// Wrapping must not break sentinel matching.
			wrapped := fmt.Errorf("outer: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
		})
	}
}

func TestErrorCategoriesAreDisjoint(t *testing.T) {
	err := NewNotFoundError("book", "abc")
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrIntegrity)

	conflict := NewChapterNumberConflictError("abc", 1)
	assert.NotErrorIs(t, conflict, ErrNotFound)

	// Integrity and not-found stay distinct: a missing blob behind present
	// metadata is never reported as a plain absence.
	integrity := NewIntegrityError("image", "abc", "blob missing")
	assert.NotErrorIs(t, integrity, ErrNotFound)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t,
		"validation error: title: must be non-empty",
		NewValidationError("title", "must be non-empty").Error())
	assert.Equal(t,
		"book not found: abc",
		NewNotFoundError("book", "abc").Error())
	assert.Equal(t,
		"chapter number 3 already exists for book abc",
		NewChapterNumberConflictError("abc", 3).Error())
}

func TestErrorAsRecoversDetail(t *testing.T) {
	var conflict *ChapterNumberConflictError
	err := fmt.Errorf("create failed: %w", NewChapterNumberConflictError("book-1", 7))
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "book-1", conflict.BookID)
	assert.Equal(t, 7, conflict.Number)
}
