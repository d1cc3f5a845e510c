package rest

import (
	"context"
	"fmt"
	"net/http"
	"silleShop/domain"
	"silleShop/pkg/logger"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PerfumeService interface {
	GetAllPerfumes(ctx context.Context) ([]domain.Perfume, error)
	GetPerfumeByID(ctx context.Context, id uint64) (*domain.PerfumeWithAccords, error)
	CreatePerfume(ctx context.Context, perfume *domain.Perfume, accords []string) (*domain.Perfume, error)
	UpdatePerfume(ctx context.Context, perfume *domain.Perfume, accords []string) (*domain.Perfume, error)
	DeletePerfume(ctx context.Context, id uint64) error
}

type PerfumeHandler struct {
	perfumeService PerfumeService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewPerfumeHandler(perfumeService PerfumeService) *PerfumeHandler {
	return &PerfumeHandler{
		perfumeService: perfumeService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type PerfumeRequest struct {
	ExternalID   string   `json:"external_id,omitempty"`
	Name         string   `json:"name" validate:"required"`
	Brand        string   `json:"brand" validate:"required"`
	Gender       string   `json:"gender" validate:"required,oneof=male female unisex"`
	Description  string   `json:"description,omitempty"`
	PricePerML   float64  `json:"price_per_ml" validate:"gte=0"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Accords      []string `json:"accords" validate:"required,min=1"`
}

// GetAllPerfumes handles listing the catalog
func (h *PerfumeHandler) GetAllPerfumes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	perfumes, err := h.perfumeService.GetAllPerfumes(ctx)
	if err != nil {
		logger.Error("Failed to get all perfumes", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Perfumes retrieved successfully",
		"perfumes": perfumes,
	})
}

// GetPerfumeByID handles getting one perfume with its ordered accords
func (h *PerfumeHandler) GetPerfumeByID(c echo.Context) error {
	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	perfume, err := h.perfumeService.GetPerfumeByID(ctx, perfumeID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Perfume retrieved successfully",
		"perfume": perfume,
	})
}

// CreatePerfume handles admin catalog additions
func (h *PerfumeHandler) CreatePerfume(c echo.Context) error {
	var req PerfumeRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate perfume request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	perfume := domain.Perfume{
		ExternalID:   req.ExternalID,
		Name:         req.Name,
		Brand:        req.Brand,
		Gender:       req.Gender,
		Description:  req.Description,
		PricePerML:   req.PricePerML,
		ThumbnailURL: req.ThumbnailURL,
	}

	created, err := h.perfumeService.CreatePerfume(ctx, &perfume, req.Accords)
	if err != nil {
		logger.Error("Failed to create perfume", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Perfume created successfully",
		"perfume": created,
	})
}

// UpdatePerfume handles admin catalog edits, replacing the accord list
func (h *PerfumeHandler) UpdatePerfume(c echo.Context) error {
	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	var req PerfumeRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate perfume request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	perfume := domain.Perfume{
		ID:           perfumeID,
		ExternalID:   req.ExternalID,
		Name:         req.Name,
		Brand:        req.Brand,
		Gender:       req.Gender,
		Description:  req.Description,
		PricePerML:   req.PricePerML,
		ThumbnailURL: req.ThumbnailURL,
	}

	updated, err := h.perfumeService.UpdatePerfume(ctx, &perfume, req.Accords)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Perfume updated successfully",
		"perfume": updated,
	})
}

// DeletePerfume handles admin catalog removals
func (h *PerfumeHandler) DeletePerfume(c echo.Context) error {
	var perfumeID uint64
	if _, err := fmt.Sscan(c.Param("id"), &perfumeID); err != nil {
		logger.Error("Invalid perfume ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid perfume ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.perfumeService.DeletePerfume(ctx, perfumeID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Perfume deleted successfully",
	})
}
