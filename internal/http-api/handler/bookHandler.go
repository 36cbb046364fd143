package handler

import (
	"errors"
	"net/http"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	bookService   service.BookService
	reviewService service.ReviewService
}

func NewBookHandler(bookService service.BookService, reviewService service.ReviewService) *BookHandler {
	return &BookHandler{
		bookService:   bookService,
		reviewService: reviewService,
	}
}

// RegisterRoutes registers book routes on the public group
func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	books := router.Group("/books")
	{
		books.GET("/search", h.Search)
		books.GET("/:isbn", h.Get)
		books.GET("/:isbn/detail", h.Detail)
	}
}

// Search finds locally known books by ISBN, title or author
// GET /api/books/search?q=term
func (h *BookHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	books, err := h.bookService.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	results := make([]dto.BookResponse, 0, len(books))
	for _, book := range books {
		results = append(results, *dto.FromModelToBookResponse(&book))
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:   query,
		Total:   len(results),
		Results: results,
	})
}

// Get returns the catalog payload for a locally known ISBN. Unknown
// ISBNs are a 404 even when the external catalog has them: this
// endpoint only exposes books already in the local store.
// GET /api/books/:isbn
func (h *BookHandler) Get(c *gin.Context) {
	isbn := c.Param("isbn")

	book, err := h.bookService.GetByISBN(c.Request.Context(), isbn)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToBookResponse(book))
}

// Detail resolves an ISBN (fetching and caching from the external
// catalog on a local miss) and joins it with the review aggregate.
// GET /api/books/:isbn/detail
func (h *BookHandler) Detail(c *gin.Context) {
	isbn := c.Param("isbn")

	book, err := h.bookService.Resolve(c.Request.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case errors.Is(err, service.ErrCatalogUnavailable):
			// retryable: nothing was cached for this ISBN
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		}
		return
	}

	aggregate, err := h.reviewService.Aggregate(c.Request.Context(), book.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregate failed"})
		return
	}

	c.JSON(http.StatusOK, dto.BookDetailResponse{
		BookResponse:  *dto.FromModelToBookResponse(book),
		ReviewCount:   aggregate.ReviewCount,
		AverageRating: aggregate.AverageRating,
	})
}
