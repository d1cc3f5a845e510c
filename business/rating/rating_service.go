package rating

import (
	"context"
	"fmt"

	"silleShop/business/matching"
	"silleShop/domain"
	"silleShop/pkg/logger"
)

// RatingRepository contract interface
type RatingRepository interface {
	Upsert(ctx context.Context, rating *domain.Rating) error
	GetByUserAndPerfume(ctx context.Context, userID uint, perfumeID uint64) (*domain.Rating, error)
	GetStats(ctx context.Context, perfumeID uint64) (domain.RatingStats, error)
}

// PerfumeFinder resolves catalog entries so ratings cannot reference
// perfumes that do not exist.
type PerfumeFinder interface {
	FindByID(ctx context.Context, id uint64) (domain.PerfumeWithAccords, error)
}

// RecomputeNotifier nudges the match coordinator after a trigger has been
// durably committed.
type RecomputeNotifier interface {
	Notify()
}

type RatingService struct {
	ratingRepo  RatingRepository
	perfumeRepo PerfumeFinder
	notifier    RecomputeNotifier
}

func NewRatingService(ratingRepo RatingRepository, perfumeRepo PerfumeFinder, notifier RecomputeNotifier) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		perfumeRepo: perfumeRepo,
		notifier:    notifier,
	}
}

// Rate records or overwrites the user's rating for a perfume. The global
// rating aggregate and the matching trigger commit in the same transaction
// as the rating row.
func (s *RatingService) Rate(ctx context.Context, userID uint, perfumeID uint64, value int) (domain.Rating, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rating{}, fmt.Errorf("context error: %w", err)
	}

	if value < 1 || value > 5 {
		return domain.Rating{}, &matching.ValidationError{Reason: fmt.Sprintf("rating must be between 1 and 5, got %d", value)}
	}

	if _, err := s.perfumeRepo.FindByID(ctx, perfumeID); err != nil {
		return domain.Rating{}, fmt.Errorf("failed to find perfume %d: %w", perfumeID, err)
	}

	rating := domain.Rating{
		UserID:    userID,
		PerfumeID: perfumeID,
		Rating:    value,
	}

	if err := s.ratingRepo.Upsert(ctx, &rating); err != nil {
		return domain.Rating{}, fmt.Errorf("failed to save rating: %w", err)
	}

	logger.Info("rating recorded", "user_id", userID, "perfume_id", perfumeID, "rating", value)

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return rating, nil
}

func (s *RatingService) GetUserRating(ctx context.Context, userID uint, perfumeID uint64) (*domain.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return s.ratingRepo.GetByUserAndPerfume(ctx, userID, perfumeID)
}

func (s *RatingService) GetStats(ctx context.Context, perfumeID uint64) (domain.RatingStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.RatingStats{}, fmt.Errorf("context error: %w", err)
	}

	return s.ratingRepo.GetStats(ctx, perfumeID)
}
