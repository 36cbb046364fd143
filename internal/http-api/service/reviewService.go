package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"

	"gorm.io/gorm"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxBodyLength = 2000 // runes
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyBody       = errors.New("review body must not be empty")
	ErrBodyTooLong     = errors.New("review body exceeds the length limit")
	ErrDuplicateReview = errors.New("review already exists for this book")
	ErrReviewNotFound  = errors.New("review not found")
)

// AggregateCache fronts the aggregate query; the Redis implementation
// lives in internal/cache, tests substitute a fake. A nil-backed cache
// is a permanent miss.
type AggregateCache interface {
	Get(ctx context.Context, bookID int64) (count int64, mean *float64, ok bool)
	Set(ctx context.Context, bookID int64, count int64, mean *float64)
	Invalidate(ctx context.Context, bookID int64)
}

type ReviewService interface {
	Submit(ctx context.Context, userID string, bookID int64, rating int, body string) (*dto.ReviewResponse, error)
	Update(ctx context.Context, userID string, bookID int64, rating int, body string) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, userID string, bookID int64) error
	GetUserReview(ctx context.Context, userID string, bookID int64) (*dto.UserReviewResponse, error)
	GetBookReviews(ctx context.Context, bookID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	Aggregate(ctx context.Context, bookID int64) (*dto.AggregateResponse, error)
	ActivityFor(ctx context.Context, userID string) ([]dto.ActivityItemResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
	cache      AggregateCache
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository, cache AggregateCache) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		cache:      cache,
	}
}

func validateReview(rating int, body string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if body == "" {
		return ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	return nil
}

// Submit creates a new review. Uniqueness of (user, book) is decided by
// the storage constraint, not a prior existence check; a concurrent
// duplicate surfaces as ErrDuplicateReview.
func (s *reviewService) Submit(ctx context.Context, userID string, bookID int64, rating int, body string) (*dto.ReviewResponse, error) {
	if err := validateReview(rating, body); err != nil {
		return nil, err
	}

	// Check if book exists
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	review := &models.Review{
		UserID: userID,
		BookID: bookID,
		Rating: rating,
		Body:   body,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// Reload with user data for the response
	review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, bookID)

	return dto.FromModelToReviewResponse(review), nil
}

// Update revises the owner's existing review under the same uniqueness key.
func (s *reviewService) Update(ctx context.Context, userID string, bookID int64, rating int, body string) (*dto.ReviewResponse, error) {
	if err := validateReview(rating, body); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	review.Rating = rating
	review.Body = body
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, bookID)

	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, userID string, bookID int64) error {
	if _, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	// the review can vanish between the read and the delete; a lost
	// race is still "not found", not a server fault
	if err := s.reviewRepo.Delete(ctx, userID, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	s.cache.Invalidate(ctx, bookID)
	return nil
}

func (s *reviewService) GetUserReview(ctx context.Context, userID string, bookID int64) (*dto.UserReviewResponse, error) {
	review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	return &dto.UserReviewResponse{
		Rating:    review.Rating,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}, nil
}

func (s *reviewService) GetBookReviews(ctx context.Context, bookID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByBook(ctx, bookID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&review))
	}

	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}

// Aggregate returns the review count and mean rating for a book, served
// read-through from the cache. The mean is nil for an unreviewed book;
// a zero-count aggregate is a value and may be cached, but absence of
// the book itself is never stored here.
func (s *reviewService) Aggregate(ctx context.Context, bookID int64) (*dto.AggregateResponse, error) {
	if count, mean, ok := s.cache.Get(ctx, bookID); ok {
		return &dto.AggregateResponse{ReviewCount: count, AverageRating: mean}, nil
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	count, mean, err := s.reviewRepo.Aggregate(ctx, bookID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, bookID, count, mean)

	return &dto.AggregateResponse{ReviewCount: count, AverageRating: mean}, nil
}

// ActivityFor returns the user's reviews, most recent first.
func (s *reviewService) ActivityFor(ctx context.Context, userID string) ([]dto.ActivityItemResponse, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ActivityItemResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, *dto.FromModelToActivityItem(&review))
	}
	return items, nil
}
