package rest

import (
	"context"
	"fmt"
	"net/http"
	"silleShop/domain"
	"silleShop/pkg/logger"
	"silleShop/pkg/metrics"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type MatchService interface {
	GetMatch(ctx context.Context, userID uint, perfumeID uint64) (float64, bool, error)
	GetMatches(ctx context.Context, userID uint) ([]domain.MatchScore, error)
}

type MatchHandler struct {
	matchService MatchService
	timeout      time.Duration
}

func NewMatchHandler(matchService MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		timeout:      10 * time.Second,
	}
}

// GetMatches returns the caller's match list, best score first. Users without
// a survey response get an empty list, not an error.
func (h *MatchHandler) GetMatches(c echo.Context) error {
	start := time.Now()

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	matches, err := h.matchService.GetMatches(ctx, userID)
	if err != nil {
		logger.Error("Failed to get matches", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}

	metrics.MatchListRequests.Inc()
	metrics.MatchListLatency.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(matches))
}

// GetMatch returns the caller's score for one perfume
func (h *MatchHandler) GetMatch(c echo.Context) error {
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

	score, found, err := h.matchService.GetMatch(ctx, userID, perfumeID)
	if err != nil {
		logger.Error("Failed to get match", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "match not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(domain.MatchScore{
		PerfumeID: perfumeID,
		Score:     score,
	}))
}
