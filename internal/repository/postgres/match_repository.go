package postgres

import (
	"context"
	"errors"
	"fmt"

	"silleShop/domain"

	"gorm.io/gorm"
)

type MatchRepository struct {
	DB *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{
		DB: db,
	}
}

const matchBatchSize = 500

// ReplaceForUser swaps the user's whole match set inside one transaction:
// readers either see the previous complete batch or the new one, never a
// half-written mix.
func (r *MatchRepository) ReplaceForUser(ctx context.Context, userID uint, matches []domain.PerfumeMatch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.PerfumeMatch{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous matches: %w", err)
		}

		if len(matches) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(matches, matchBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(matches)), nil
}

func (r *MatchRepository) DeleteForUser(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PerfumeMatch{}).Error; err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}

	return nil
}

func (r *MatchRepository) Get(ctx context.Context, userID uint, perfumeID uint64) (*domain.PerfumeMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var match domain.PerfumeMatch
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND perfume_id = ?", userID, perfumeID).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query match: %w", err)
	}

	return &match, nil
}

// GetAll lists the user's scores ranked by score desc with perfume id asc as
// the tie-break, so pagination stays deterministic. Rows whose perfume has
// vanished from the catalog are pruned instead of served.
func (r *MatchRepository) GetAll(ctx context.Context, userID uint) ([]domain.MatchScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var scores []domain.MatchScore
	err := r.DB.WithContext(ctx).
		Table("perfume_matches").
		Select("perfume_matches.perfume_id, perfume_matches.score").
		Joins("JOIN perfumes ON perfumes.id = perfume_matches.perfume_id").
		Where("perfume_matches.user_id = ?", userID).
		Order("perfume_matches.score DESC, perfume_matches.perfume_id ASC").
		Scan(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	if err := r.pruneOrphans(ctx, userID); err != nil {
		return nil, err
	}

	return scores, nil
}

// pruneOrphans drops match rows that reference perfumes no longer in the
// catalog. A consistency violation is a cue to clean up, not an error.
func (r *MatchRepository) pruneOrphans(ctx context.Context, userID uint) error {
	err := r.DB.WithContext(ctx).Exec(`
		DELETE FROM perfume_matches
		WHERE user_id = ?
		  AND perfume_id NOT IN (SELECT id FROM perfumes)`, userID).Error
	if err != nil {
		return fmt.Errorf("failed to prune orphan matches: %w", err)
	}
	return nil
}
