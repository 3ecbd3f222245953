package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Limits holds the per-field input ceilings. All values are injected from
// configuration at construction time; nothing here is a domain constant.
type Limits struct {
	// MaxTitleLen bounds book and chapter titles, in characters.
	MaxTitleLen int
	// MaxAuthorLen bounds the optional author field, in characters.
	MaxAuthorLen int
	// MaxTextLen bounds descriptions and chapter content, in characters.
	MaxTextLen int
	// MaxChapterNumber bounds the chapter sequence number. This caps
	// pathological sort and storage costs, it is not a domain limit.
	MaxChapterNumber int
	// MaxPageSize bounds the limit parameter of listing operations.
	MaxPageSize int
	// MaxUploadBytes bounds the image payload size.
	MaxUploadBytes int64
	// AllowedImageTypes is the MIME type whitelist for uploads.
	AllowedImageTypes []string
}

// Validator performs fail-fast input validation against configured limits.
// All checks are pure; no validation has storage side effects. Safe for
// concurrent use.
type Validator struct {
	check        *validator.Validate
	limits       Limits
	imageTypeTag string
}

// NewValidator creates a Validator bound to the given limits.
func NewValidator(limits Limits) *Validator {
	return &Validator{
		check:        validator.New(),
		limits:       limits,
		imageTypeTag: "oneof=" + strings.Join(limits.AllowedImageTypes, " "),
	}
}

// ValidateCreateBook checks a book creation input. The first violation is
// returned; no partial result is produced.
func (v *Validator) ValidateCreateBook(in CreateBookInput) error {
	if err := v.check.Var(in.Title, fmt.Sprintf("required,max=%d", v.limits.MaxTitleLen)); err != nil {
		return NewValidationError("title", fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxTitleLen))
	}
	if err := v.check.Var(in.Author, fmt.Sprintf("omitempty,max=%d", v.limits.MaxAuthorLen)); err != nil {
		return NewValidationError("author", fmt.Sprintf("must be at most %d characters", v.limits.MaxAuthorLen))
	}
	if err := v.check.Var(in.Description, fmt.Sprintf("omitempty,max=%d", v.limits.MaxTextLen)); err != nil {
		return NewValidationError("description", fmt.Sprintf("must be at most %d characters", v.limits.MaxTextLen))
	}
	if in.Image != nil {
		return v.ValidateImageUpload(*in.Image)
	}
	return nil
}

// ValidateImageUpload checks the declared content type against the
// whitelist and the payload size against the configured ceiling. Both
// checks run before the blob touches any storage.
func (v *Validator) ValidateImageUpload(in ImageUpload) error {
	if err := v.check.Var(in.ContentType, v.imageTypeTag); err != nil {
		return NewValidationError("content_type", fmt.Sprintf("must be one of %s", strings.Join(v.limits.AllowedImageTypes, ", ")))
	}
	if len(in.Data) == 0 {
		return NewValidationError("image", "payload must not be empty")
	}
	if int64(len(in.Data)) > v.limits.MaxUploadBytes {
		return NewValidationError("image", fmt.Sprintf("payload must be at most %d bytes", v.limits.MaxUploadBytes))
	}
	return nil
}

// ValidateCreateChapter checks a chapter creation input.
func (v *Validator) ValidateCreateChapter(in CreateChapterInput) error {
	if in.BookID == uuid.Nil {
		return NewValidationError("book_id", "is required")
	}
	if err := v.check.Var(in.Number, fmt.Sprintf("gte=1,lte=%d", v.limits.MaxChapterNumber)); err != nil {
		return NewValidationError("number", fmt.Sprintf("must be between 1 and %d", v.limits.MaxChapterNumber))
	}
	if err := v.check.Var(in.Title, fmt.Sprintf("required,max=%d", v.limits.MaxTitleLen)); err != nil {
		return NewValidationError("title", fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxTitleLen))
	}
	if err := v.check.Var(in.Content, fmt.Sprintf("required,max=%d", v.limits.MaxTextLen)); err != nil {
		return NewValidationError("content", fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxTextLen))
	}
	return nil
}

// ValidateSearchTerm checks a title search term.
func (v *Validator) ValidateSearchTerm(term string) error {
	if err := v.check.Var(term, fmt.Sprintf("required,max=%d", v.limits.MaxTitleLen)); err != nil {
		return NewValidationError("term", fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxTitleLen))
	}
	return nil
}

// ValidatePage checks listing bounds against the configured page ceiling.
func (v *Validator) ValidatePage(p Page) error {
	if p.Offset < 0 {
		return NewValidationError("offset", "must be zero or positive")
	}
	if err := v.check.Var(p.Limit, fmt.Sprintf("gte=1,lte=%d", v.limits.MaxPageSize)); err != nil {
		return NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", v.limits.MaxPageSize))
	}
	return nil
}

// ParseID parses a canonical hyphenated UUID. A malformed identifier is a
// validation failure, distinct from a not-found outcome.
func (v *Validator) ParseID(field, s string) (uuid.UUID, error) {
	if err := v.check.Var(s, "required,uuid"); err != nil {
		return uuid.Nil, NewValidationError(field, "must be a valid UUID")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, NewValidationError(field, "must be a valid UUID")
	}
	return id, nil
}
