package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// Pagination and body-size bounds.
const (
	defaultPageSize = 10

	// defaultMaxBodyBytes caps request bodies when no upload ceiling is
	// configured.
	defaultMaxBodyBytes = 8 << 20

	// bodyEnvelopeBytes is the slack on top of the base64-encoded upload
	// ceiling for the JSON envelope around an image payload.
	bodyEnvelopeBytes = 1 << 20
)

// maxBodyBytes returns the request-body cap for the given upload ceiling,
// leaving room for base64 inflation plus the JSON envelope.
func maxBodyBytes(uploadCeiling int64) int64 {
	if uploadCeiling <= 0 {
		return defaultMaxBodyBytes
	}
	return (uploadCeiling*4)/3 + bodyEnvelopeBytes
}

// uploadBookRequest is the JSON request body for creating a book.
type uploadBookRequest struct {
	Title       string              `json:"title"`
	Author      string              `json:"author,omitempty"`
	Description string              `json:"description,omitempty"`
	Image       *imageUploadRequest `json:"image,omitempty"`
}

// imageUploadRequest carries an inline image payload. Data is
// base64-encoded in transit and decoded by encoding/json.
type imageUploadRequest struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// uploadChapterRequest is the JSON request body for creating a chapter.
type uploadChapterRequest struct {
	BookID  string `json:"book_id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// searchBooks handles GET /search-book.
// It returns one page of title matches plus the total match count.
func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("book_title")
	page, ok := parsePage(w, r, "offset", "limit")
	if !ok {
		return
	}

	books, count, err := s.catalog.SearchBooks(r.Context(), term, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]bookResponse, len(books))
	for i, b := range books {
		responses[i] = domainBookToResponse(b)
	}

	writeJSON(w, http.StatusOK, searchBooksResponse{
		Books: responses,
		Count: count,
	})
}

// listChapters handles GET /chapters.
// It returns one page of a book's chapters in reading order plus the
// book's total chapter count. A missing book is a 404, never an empty page.
func (s *Server) listChapters(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseUUID(w, r.URL.Query().Get("book_id"), "book_id")
	if !ok {
		return
	}
	page, ok := parsePage(w, r, "skip", "take")
	if !ok {
		return
	}

	chapters, count, err := s.catalog.ListChapters(r.Context(), bookID, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]chapterSummaryResponse, len(chapters))
	for i, c := range chapters {
		responses[i] = domainChapterToSummary(c)
	}

	writeJSON(w, http.StatusOK, listChaptersResponse{
		Chapters: responses,
		Count:    count,
	})
}

// getChapter handles GET /chapter.
func (s *Server) getChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUID(w, r.URL.Query().Get("chapter_id"), "chapter_id")
	if !ok {
		return
	}

	chapter, err := s.catalog.GetChapter(r.Context(), chapterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainChapterToResponse(chapter))
}

// getImage handles GET /images/{imageID}.
// It serves the stored bytes with the content type recorded at upload.
func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := parseUUID(w, chi.URLParam(r, "imageID"), "image_id")
	if !ok {
		return
	}

	data, contentType, err := s.catalog.GetImage(r.Context(), imageID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// uploadBook handles POST /upload-book.
func (s *Server) uploadBook(w http.ResponseWriter, r *http.Request) {
	var req uploadBookRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	input := domain.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
	}
	if req.Image != nil {
		input.Image = &domain.ImageUpload{
			ContentType: req.Image.ContentType,
			Data:        req.Image.Data,
		}
	}

	book, err := s.catalog.CreateBook(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadBookResponse{
		BookID: book.ID.String(),
	})
}

// uploadChapter handles POST /upload-chapter.
func (s *Server) uploadChapter(w http.ResponseWriter, r *http.Request) {
	var req uploadChapterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	bookID, ok := parseUUID(w, req.BookID, "book_id")
	if !ok {
		return
	}

	chapter, err := s.catalog.CreateChapter(r.Context(), domain.CreateChapterInput{
		BookID:  bookID,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadChapterResponse{
		ChapterID: chapter.ID.String(),
	})
}

// writeDomainError maps domain errors to HTTP status codes and writes a
// JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrNotFound):
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", nf.Entity))
		} else {
			writeError(w, http.StatusNotFound, "resource not found")
		}
	case errors.Is(err, domain.ErrConflict):
		var ce *domain.ChapterNumberConflictError
		if errors.As(err, &ce) {
			writeError(w, http.StatusConflict, fmt.Sprintf("chapter number %d already exists", ce.Number))
		} else {
			writeError(w, http.StatusConflict, "conflict")
		}
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		// Integrity and storage failures carry detail in logs only.
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody reads and unmarshals a JSON request body, writing a 413 when
// the body exceeds the configured cap and a 400 on any other failure.
// Returns true on success.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// parseUUID parses a UUID from a string, writing a 400 error response if
// invalid. The parse error details are not echoed back.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}

// parsePage extracts offset and limit query parameters under the given
// names. Malformed numbers are a 400; range bounds are enforced by the
// service against the configured page ceiling.
func parsePage(w http.ResponseWriter, r *http.Request, offsetKey, limitKey string) (domain.Page, bool) {
	page := domain.Page{Offset: 0, Limit: defaultPageSize}

	if v := r.URL.Query().Get(offsetKey); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", offsetKey))
			return domain.Page{}, false
		}
		page.Offset = parsed
	}

	if v := r.URL.Query().Get(limitKey); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", limitKey))
			return domain.Page{}, false
		}
		page.Limit = parsed
	}

	return page, true
}
