package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	bookService   service.BookService
}

func NewReviewHandler(reviewService service.ReviewService, bookService service.BookService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		bookService:   bookService,
	}
}

// RegisterRoutes registers review routes; reviews are addressed by the
// book's ISBN, matching the public book routes. authRequired guards the
// write routes and the ownership reads.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	reviews := router.Group("/books/:isbn/reviews")
	{
		// Public read routes
		reviews.GET("", h.List)
		reviews.GET("/average", h.GetAverage)

		// Authenticated routes
		reviews.POST("", authRequired, h.Submit)
		reviews.PUT("", authRequired, h.Update)
		reviews.DELETE("", authRequired, h.Delete)
		reviews.GET("/me", authRequired, h.GetUserReview)
	}

	router.GET("/users/me/reviews", authRequired, h.Activity)
}

// resolveBook maps the isbn path param to a locally known book, writing
// the error response on failure.
func (h *ReviewHandler) resolveBook(c *gin.Context) (*models.Book, bool) {
	book, err := h.bookService.GetByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		}
		return nil, false
	}
	return book, true
}

// Submit creates the user's review for a book
// POST /api/books/:isbn/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), userID.(string), book.ID, req.Rating, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{"error": "you have already reviewed this book"})
		case errors.Is(err, service.ErrInvalidRating),
			errors.Is(err, service.ErrEmptyBody),
			errors.Is(err, service.ErrBodyTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submit failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Update revises the user's existing review
// PUT /api/books/:isbn/reviews
func (h *ReviewHandler) Update(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID.(string), book.ID, req.Rating, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidRating),
			errors.Is(err, service.ErrEmptyBody),
			errors.Is(err, service.ErrBodyTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// Delete removes the user's review for a book
// DELETE /api/books/:isbn/reviews
func (h *ReviewHandler) Delete(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID.(string), book.ID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// GetUserReview retrieves the current user's review for a book
// GET /api/books/:isbn/reviews/me
func (h *ReviewHandler) GetUserReview(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	review, err := h.reviewService.GetUserReview(c.Request.Context(), userID.(string), book.ID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// List retrieves all reviews for a book with pagination
// GET /api/books/:isbn/reviews?page=1&page_size=20
func (h *ReviewHandler) List(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	reviews, err := h.reviewService.GetBookReviews(c.Request.Context(), book.ID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetAverage retrieves the aggregate rating for a book
// GET /api/books/:isbn/reviews/average
func (h *ReviewHandler) GetAverage(c *gin.Context) {
	book, ok := h.resolveBook(c)
	if !ok {
		return
	}

	aggregate, err := h.reviewService.Aggregate(c.Request.Context(), book.ID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregate failed"})
		return
	}

	c.JSON(http.StatusOK, aggregate)
}

// Activity retrieves the current user's review feed, most recent first
// GET /api/users/me/reviews
func (h *ReviewHandler) Activity(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.reviewService.ActivityFor(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(items),
		"reviews": items,
	})
}
