package httpserver

import (
	"github.com/helixir/book-catalog-service/internal/domain"
)

// Response types for JSON serialization.

type bookResponse struct {
	BookID      string  `json:"book_id"`
	BookTitle   string  `json:"book_title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type searchBooksResponse struct {
	Books []bookResponse `json:"books"`
	Count int64          `json:"count"`
}

type chapterSummaryResponse struct {
	ChapterID    string `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	Number       int    `json:"number"`
}

type listChaptersResponse struct {
	Chapters []chapterSummaryResponse `json:"chapters"`
	Count    int64                    `json:"count"`
}

type chapterResponse struct {
	ChapterID string `json:"chapter_id"`
	BookID    string `json:"book_id"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

type uploadBookResponse struct {
	BookID string `json:"book_id"`
}

type uploadChapterResponse struct {
	ChapterID string `json:"chapter_id"`
}

// Converter functions

func domainBookToResponse(b *domain.Book) bookResponse {
	resp := bookResponse{
		BookID:    b.ID.String(),
		BookTitle: b.Title,
	}
	if b.Author != "" {
		resp.Author = &b.Author
	}
	if b.Description != "" {
		resp.Description = &b.Description
	}
	if b.ImageID != nil {
		url := "/images/" + b.ImageID.String()
		resp.ImageURL = &url
	}
	return resp
}

func domainChapterToSummary(c *domain.Chapter) chapterSummaryResponse {
	return chapterSummaryResponse{
		ChapterID:    c.ID.String(),
		ChapterTitle: c.Title,
		Number:       c.Number,
	}
}

func domainChapterToResponse(c *domain.Chapter) chapterResponse {
	return chapterResponse{
		ChapterID: c.ID.String(),
		BookID:    c.BookID.String(),
		Number:    c.Number,
		Title:     c.Title,
		Content:   c.Content,
	}
}
