package service

import (
	"context"
	"errors"
	"strings"

	"bookhub/internal/catalog"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	// ErrBookNotFound: the ISBN is unknown both locally and externally.
	ErrBookNotFound = errors.New("book not found")
	// ErrCatalogUnavailable: the external catalog failed transiently.
	// Distinct from absence - the caller may retry, nothing was cached.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// CatalogClient is the slice of the catalog package used by the book
// service; tests substitute a fake.
type CatalogClient interface {
	Lookup(ctx context.Context, isbn string) (*catalog.Metadata, error)
}

type BookService interface {
	// GetByISBN is a local-only lookup; it never calls the catalog.
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	// Resolve applies the cache-then-fetch policy.
	Resolve(ctx context.Context, isbn string) (*models.Book, error)
	Search(ctx context.Context, term string) ([]models.Book, error)
	Import(ctx context.Context, book *models.Book) error
}

type bookService struct {
	repo    repository.BookRepository
	catalog CatalogClient
}

func NewBookService(repo repository.BookRepository, catalogClient CatalogClient) BookService {
	return &bookService{repo: repo, catalog: catalogClient}
}

func (s *bookService) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	normalized, err := catalog.NormalizeISBN(isbn)
	if err != nil {
		return nil, ErrBookNotFound
	}
	book, err := s.repo.GetByISBN(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// Resolve tries the local store first and falls back to the external
// catalog on a miss, caching a successful fetch. A catalog miss is NOT
// cached: the next resolution for the same ISBN asks the catalog again.
func (s *bookService) Resolve(ctx context.Context, isbn string) (*models.Book, error) {
	normalized, err := catalog.NormalizeISBN(isbn)
	if err != nil {
		return nil, ErrBookNotFound
	}

	book, err := s.repo.GetByISBN(ctx, normalized)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	meta, err := s.catalog.Lookup(ctx, normalized)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, catalog.ErrUnavailable):
			return nil, ErrCatalogUnavailable
		default:
			return nil, err
		}
	}

	fetched := bookFromMetadata(meta)
	if err := s.repo.Upsert(ctx, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

// Search matches the term against title and authors as a substring, and
// against the ISBN exactly when the term normalizes to one.
func (s *bookService) Search(ctx context.Context, term string) ([]models.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Book{}, nil
	}

	// best-effort: non-ISBN terms simply never hit the isbn branch
	normalized, err := catalog.NormalizeISBN(term)
	if err != nil {
		normalized = ""
	}

	return s.repo.Search(ctx, term, normalized)
}

// Import feeds the bulk-import path through the same upsert contract as
// the request-time cache fill.
func (s *bookService) Import(ctx context.Context, book *models.Book) error {
	normalized, err := catalog.NormalizeISBN(book.ISBN)
	if err != nil {
		return err
	}
	book.ISBN = normalized
	if strings.TrimSpace(book.Title) == "" {
		return errors.New("title is required")
	}
	return s.repo.Upsert(ctx, book)
}

func bookFromMetadata(meta *catalog.Metadata) *models.Book {
	return &models.Book{
		ISBN:                meta.ISBN,
		Title:               meta.Title,
		Authors:             meta.Authors,
		Year:                meta.Year,
		CoverURL:            meta.CoverURL,
		ExternalRating:      meta.AverageRating,
		ExternalRatingCount: meta.RatingsCount,
	}
}
