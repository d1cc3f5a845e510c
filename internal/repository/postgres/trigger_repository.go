package postgres

import (
	"context"
	"fmt"

	"silleShop/domain"

	"gorm.io/gorm"
)

type TriggerRepository struct {
	DB *gorm.DB
}

func NewTriggerRepository(db *gorm.DB) *TriggerRepository {
	return &TriggerRepository{
		DB: db,
	}
}

// ClaimPending drains all committed recompute triggers and returns the
// distinct user ids they belong to. Because the triggers were written inside
// the same transaction as the data change, a row being visible here means
// its inputs are durably committed. Many triggers for one user collapse into
// a single claim.
func (r *TriggerRepository) ClaimPending(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var userIDs []uint
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.RecomputeTrigger{}).
			Distinct("user_id").
			Order("user_id").
			Pluck("user_id", &userIDs).Error
		if err != nil {
			return fmt.Errorf("failed to list pending triggers: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		if err := tx.Where("user_id IN ?", userIDs).Delete(&domain.RecomputeTrigger{}).Error; err != nil {
			return fmt.Errorf("failed to consume triggers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}
