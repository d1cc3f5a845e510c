package postgres

import (
	"context"
	"errors"
	"fmt"

	"silleShop/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{
		DB: db,
	}
}

func (r *SurveyRepository) GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.SurveyResponse{}, false, fmt.Errorf("context error: %w", err)
	}

	var resp domain.SurveyResponse
	err := r.DB.WithContext(ctx).First(&resp, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SurveyResponse{}, false, nil
	}
	if err != nil {
		return domain.SurveyResponse{}, false, fmt.Errorf("failed to query survey response: %w", err)
	}

	return resp, true, nil
}

// SaveResponse replaces the user's survey response wholesale and enqueues a
// recompute trigger in the same transaction, so the trigger only becomes
// visible once the response is committed.
func (r *SurveyRepository) SaveResponse(ctx context.Context, resp *domain.SurveyResponse) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				UpdateAll: true,
			},
		).Create(resp).Error; err != nil {
			return fmt.Errorf("failed to upsert survey response: %w", err)
		}

		trigger := domain.RecomputeTrigger{
			UserID: resp.UserID,
			Reason: domain.TriggerReasonSurvey,
		}
		if err := tx.Create(&trigger).Error; err != nil {
			return fmt.Errorf("failed to enqueue recompute trigger: %w", err)
		}

		return nil
	})
}

func (r *SurveyRepository) GetActiveQuestions(ctx context.Context) ([]domain.SurveyQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var questions []domain.SurveyQuestion
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query survey questions: %w", err)
	}

	return questions, nil
}
