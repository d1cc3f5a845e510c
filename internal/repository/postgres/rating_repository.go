package postgres

import (
	"context"
	"errors"
	"fmt"

	"silleShop/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{
		DB: db,
	}
}

// Upsert writes the rating, refreshes the perfume's aggregate, and enqueues
// a recompute trigger, all in one transaction. The aggregate is recomputed
// from the rating rows instead of incrementally so repeated re-rating by the
// same user cannot drift it.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "perfume_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
			},
		).Create(rating).Error; err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}

		if err := refreshRatingStats(tx, rating.PerfumeID); err != nil {
			return err
		}

		trigger := domain.RecomputeTrigger{
			UserID: rating.UserID,
			Reason: domain.TriggerReasonRating,
		}
		if err := tx.Create(&trigger).Error; err != nil {
			return fmt.Errorf("failed to enqueue recompute trigger: %w", err)
		}

		return nil
	})
}

func (r *RatingRepository) GetByUserAndPerfume(ctx context.Context, userID uint, perfumeID uint64) (*domain.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rating domain.Rating
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND perfume_id = ?", userID, perfumeID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rating: %w", err)
	}

	return &rating, nil
}

func (r *RatingRepository) GetStats(ctx context.Context, perfumeID uint64) (domain.RatingStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.RatingStats{}, fmt.Errorf("context error: %w", err)
	}

	var stats domain.RatingStats
	err := r.DB.WithContext(ctx).
		Table("ratings").
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS mean").
		Where("perfume_id = ?", perfumeID).
		Scan(&stats).Error
	if err != nil {
		return domain.RatingStats{}, fmt.Errorf("failed to query rating stats: %w", err)
	}

	return stats, nil
}

func refreshRatingStats(tx *gorm.DB, perfumeID uint64) error {
	err := tx.Exec(`
		UPDATE perfumes SET
			rating_count = agg.count,
			rating_mean  = agg.mean,
			updated_at   = NOW()
		FROM (
			SELECT COUNT(*) AS count, COALESCE(AVG(rating), 0) AS mean
			FROM ratings WHERE perfume_id = ?
		) AS agg
		WHERE perfumes.id = ?`, perfumeID, perfumeID).Error
	if err != nil {
		return fmt.Errorf("failed to refresh rating stats: %w", err)
	}
	return nil
}
