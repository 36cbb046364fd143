package dto

import (
	"bookhub/internal/http-api/models"
)

// BookResponse is the catalog payload for a locally known book
type BookResponse struct {
	ISBN    string   `json:"isbn"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    *int     `json:"year,omitempty"`
	CoverURL *string `json:"cover_url,omitempty"`

	ExternalRating      *float64 `json:"external_rating,omitempty"`
	ExternalRatingCount *int     `json:"external_rating_count,omitempty"`
}

// FromModelToBookResponse converts a Book model to BookResponse DTO
func FromModelToBookResponse(book *models.Book) *BookResponse {
	return &BookResponse{
		ISBN:                book.ISBN,
		Title:               book.Title,
		Authors:             book.Authors,
		Year:                book.Year,
		CoverURL:            book.CoverURL,
		ExternalRating:      book.ExternalRating,
		ExternalRatingCount: book.ExternalRatingCount,
	}
}

// BookDetailResponse joins the book payload with its review aggregate
type BookDetailResponse struct {
	BookResponse
	ReviewCount   int64    `json:"review_count"`
	AverageRating *float64 `json:"average_rating"` // null when no reviews
}

// SearchResponse is the materialized list of matching books
type SearchResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Results []BookResponse `json:"results"`
}

// ImportRequest is one row of the bulk import path
type ImportRequest struct {
	ISBN    string   `json:"isbn" binding:"required"`
	Title   string   `json:"title" binding:"required"`
	Authors []string `json:"authors"`
	Year    *int     `json:"year"`
}
