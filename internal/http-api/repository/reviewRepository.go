package repository

import (
	"context"

	"bookhub/internal/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, userID string, bookID int64) error
	GetByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Review, error)
	ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
	Aggregate(ctx context.Context, bookID int64) (int64, *float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a new review. The composite unique index on
// (user_id, book_id) rejects a second review for the same pair
// atomically; a check-then-insert in this layer would race.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update an existing review
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

// Delete a review by user and book. Deleting a row that no longer
// exists surfaces as gorm.ErrRecordNotFound, same as the read paths.
func (r *reviewRepository) Delete(ctx context.Context, userID string, bookID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByUserAndBook retrieves a user's review for a specific book
func (r *reviewRepository) GetByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Preload("User").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByBook retrieves all reviews for a specific book with pagination
func (r *reviewRepository) ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	// Count total reviews
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("book_id = ?", bookID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated reviews
	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Preload("User").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// ListByUser retrieves a user's full review activity, most recent first
func (r *reviewRepository) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Book").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// Aggregate computes the review count and mean rating for a book in a
// single query. The mean is nil when the book has no reviews; a zero
// mean would misreport an unreviewed book.
func (r *reviewRepository) Aggregate(ctx context.Context, bookID int64) (int64, *float64, error) {
	var row struct {
		Count   int64
		Average *float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) as count, AVG(rating) as average").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}

	return row.Count, row.Average, nil
}
