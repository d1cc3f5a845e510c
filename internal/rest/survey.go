package rest

import (
	"context"
	"errors"
	"net/http"
	"silleShop/business/matching"
	"silleShop/domain"
	"silleShop/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SurveyService interface {
	GetQuestions(ctx context.Context) ([]domain.SurveyQuestion, error)
	GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error)
	Submit(ctx context.Context, userID uint, responseData map[string]any) (domain.SurveyResponse, error)
}

type SurveyHandler struct {
	surveyService SurveyService
	timeout       time.Duration
}

func NewSurveyHandler(surveyService SurveyService) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		timeout:       10 * time.Second,
	}
}

// GetQuestions returns the active survey questions ordered for display
func (h *SurveyHandler) GetQuestions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	questions, err := h.surveyService.GetQuestions(ctx)
	if err != nil {
		logger.Error("Failed to get survey questions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(questions))
}

// GetMyResponse returns the caller's stored survey response, if any
func (h *SurveyHandler) GetMyResponse(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, found, err := h.surveyService.GetResponse(ctx, userID)
	if err != nil {
		logger.Error("Failed to get survey response", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "survey response not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// Submit stores the caller's survey answers. Invalid answers reject the whole
// payload and no previous response is touched.
func (h *SurveyHandler) Submit(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var responseData map[string]any
	if err := c.Bind(&responseData); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.surveyService.Submit(ctx, userID, responseData)
	if err != nil {
		var vErr *matching.ValidationError
		if errors.As(err, &vErr) {
			logger.Error("Failed to validate survey response", err)
			return c.JSON(http.StatusBadRequest, ResponseError{Message: vErr.Error()})
		}
		logger.Error("Failed to submit survey response", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(resp))
}
