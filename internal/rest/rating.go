package rest

import (
	"context"
	"fmt"
	"net/http"
	"silleShop/business/matching"
	"silleShop/domain"
	"silleShop/pkg/logger"
	"strings"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RatingService interface {
	Rate(ctx context.Context, userID uint, perfumeID uint64, value int) (domain.Rating, error)
	GetUserRating(ctx context.Context, userID uint, perfumeID uint64) (*domain.Rating, error)
	GetStats(ctx context.Context, perfumeID uint64) (domain.RatingStats, error)
}

type RatingHandler struct {
	ratingService RatingService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewRatingHandler(ratingService RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type RatingRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// Rate records or overwrites the caller's rating for a perfume
func (h *RatingHandler) Rate(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate rating request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.Rate(ctx, userID, perfumeID, req.Rating)
	if err != nil {
		if matching.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to save rating", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rating))
}

// GetMyRating returns the caller's rating for a perfume
func (h *RatingHandler) GetMyRating(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.GetUserRating(ctx, userID, perfumeID)
	if err != nil {
		logger.Error("Failed to get rating", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if rating == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "rating not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rating))
}

// GetStats returns the global rating aggregate for a perfume
func (h *RatingHandler) GetStats(c echo.Context) error {
	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.ratingService.GetStats(ctx, perfumeID)
	if err != nil {
		logger.Error("Failed to get rating stats", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
