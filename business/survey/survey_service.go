package survey

import (
	"context"
	"fmt"

	"silleShop/business/matching"
	"silleShop/domain"
	"silleShop/pkg/logger"

	"gorm.io/datatypes"
)

// SurveyRepository contract interface
type SurveyRepository interface {
	GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error)
	SaveResponse(ctx context.Context, resp *domain.SurveyResponse) error
	GetActiveQuestions(ctx context.Context) ([]domain.SurveyQuestion, error)
}

// RecomputeNotifier nudges the match coordinator after a trigger has been
// durably committed.
type RecomputeNotifier interface {
	Notify()
}

type SurveyService struct {
	surveyRepo SurveyRepository
	notifier   RecomputeNotifier
}

func NewSurveyService(surveyRepo SurveyRepository, notifier RecomputeNotifier) *SurveyService {
	return &SurveyService{
		surveyRepo: surveyRepo,
		notifier:   notifier,
	}
}

func (s *SurveyService) GetQuestions(ctx context.Context) ([]domain.SurveyQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return s.surveyRepo.GetActiveQuestions(ctx)
}

func (s *SurveyService) GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.SurveyResponse{}, false, fmt.Errorf("context error: %w", err)
	}

	return s.surveyRepo.GetResponse(ctx, userID)
}

// Submit validates and stores the user's survey answers, replacing any
// previous response wholesale. Validation failures reject the whole payload
// before anything is persisted. The matching trigger commits atomically with
// the response, then the coordinator is nudged.
func (s *SurveyService) Submit(ctx context.Context, userID uint, responseData map[string]any) (domain.SurveyResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("context error: %w", err)
	}

	answers, err := matching.ParseSurveyAnswers(responseData)
	if err != nil {
		return domain.SurveyResponse{}, err
	}

	resp := domain.SurveyResponse{
		UserID:       userID,
		ResponseData: datatypes.JSONMap(responseData),
	}

	if err := s.surveyRepo.SaveResponse(ctx, &resp); err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("failed to save survey response: %w", err)
	}

	logger.Info("survey submitted",
		"user_id", userID,
		"gate", answers.Gender,
		"accords_rated", len(answers.AccordRatings),
	)

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return resp, nil
}
