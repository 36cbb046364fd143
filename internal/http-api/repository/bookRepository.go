package repository

import (
	"context"
	"fmt"

	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Search(ctx context.Context, term, normalizedISBN string) ([]models.Book, error)
	Upsert(ctx context.Context, book *models.Book) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByISBN performs an exact-match lookup against the local book cache.
// A miss surfaces as gorm.ErrRecordNotFound.
func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Search performs a case-insensitive substring match on title and authors,
// plus an exact match on the normalized ISBN when the term looks like one.
// Ordering: exact ISBN match first, then title matches, then author
// matches; alphabetical by title within each group.
func (r *bookRepository) Search(ctx context.Context, term, normalizedISBN string) ([]models.Book, error) {
	list := []models.Book{}
	if term == "" && normalizedISBN == "" {
		return list, nil
	}

	pattern := "%" + term + "%"
	// COALESCE keeps NULL authors from poisoning the ILIKE match
	err := r.db.WithContext(ctx).
		Where("isbn = ? OR title ILIKE ? OR COALESCE(authors, '') ILIKE ?",
			normalizedISBN, pattern, pattern).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN isbn = ? THEN 0 WHEN title ILIKE ? THEN 1 ELSE 2 END, title ASC",
				Vars:               []interface{}{normalizedISBN, pattern},
				WithoutParentheses: true,
			},
		}).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return list, nil
}

// Upsert inserts a book row keyed by ISBN, or refreshes the mutable
// metadata fields if the ISBN has been seen before. Concurrent first
// lookups of the same ISBN both land here; ON CONFLICT makes the second
// writer an update instead of a failed insert.
func (r *bookRepository) Upsert(ctx context.Context, book *models.Book) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "isbn"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "authors", "year", "cover_url",
			"external_rating", "external_rating_count", "updated_at",
		}),
	}).Create(book).Error
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	// on conflict the RETURNING clause does not rewrite book.ID, so
	// reload to hand callers the persisted row
	if book.ID == 0 {
		existing, err := r.GetByISBN(ctx, book.ISBN)
		if err != nil {
			return fmt.Errorf("upsert book: reload: %w", err)
		}
		*book = *existing
	}
	return nil
}
