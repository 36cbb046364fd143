package dto

import (
	"time"

	"bookhub/internal/http-api/models"
)

// CreateReviewDTO for creating or updating a review
type CreateReviewDTO struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Body   string `json:"body" binding:"required,max=2000"`
}

// ReviewResponse for returning review information (for list view - without IDs)
type ReviewResponse struct {
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		Username:  review.User.Username,
		Rating:    review.Rating,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

// UserReviewResponse for returning a user's own review of a book
type UserReviewResponse struct {
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AggregateResponse for returning the derived rating of a book
type AggregateResponse struct {
	ReviewCount   int64    `json:"review_count"`
	AverageRating *float64 `json:"average_rating"` // null when review_count is 0
}

// ActivityItemResponse is one entry of a user's activity feed
type ActivityItemResponse struct {
	BookISBN  string    `json:"book_isbn"`
	BookTitle string    `json:"book_title"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModelToActivityItem converts a Review (with Book preloaded) to an activity entry
func FromModelToActivityItem(review *models.Review) *ActivityItemResponse {
	return &ActivityItemResponse{
		BookISBN:  review.Book.ISBN,
		BookTitle: review.Book.Title,
		Rating:    review.Rating,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
	}
}

// PaginatedReviewResponse for returning paginated reviews
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// NewPaginatedReviewResponse creates a paginated review response
func NewPaginatedReviewResponse(data []ReviewResponse, total, page, pageSize int) *PaginatedReviewResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedReviewResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
