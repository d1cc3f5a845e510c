package perfume

import (
	"context"
	"errors"
	"fmt"

	"silleShop/domain"
	"silleShop/pkg/logger"

	"github.com/google/uuid"
)

// PerfumeRepository contract interface
type PerfumeRepository interface {
	Create(ctx context.Context, perfume *domain.Perfume, accords []string) error
	FindByID(ctx context.Context, id uint64) (domain.PerfumeWithAccords, error)
	FindAll(ctx context.Context) ([]domain.Perfume, error)
	Update(ctx context.Context, perfume *domain.Perfume, accords []string) error
	Delete(ctx context.Context, id uint64) error
}

// RecomputeNotifier wakes the match coordinator's poller. A catalog edit
// writes no trigger rows of its own; the nudge only lets already queued
// recomputes pick up the changed catalog sooner.
type RecomputeNotifier interface {
	Notify()
}

type perfumeService struct {
	perfumeRepo PerfumeRepository
	notifier    RecomputeNotifier
}

func NewPerfumeService(perfumeRepo PerfumeRepository, notifier RecomputeNotifier) *perfumeService {
	return &perfumeService{
		perfumeRepo: perfumeRepo,
		notifier:    notifier,
	}
}

func (s *perfumeService) GetAllPerfumes(ctx context.Context) ([]domain.Perfume, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all perfumes")
		return nil, fmt.Errorf("context error: %w", err)
	}

	perfumes, err := s.perfumeRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all perfumes", err)
		return nil, err
	}

	return perfumes, nil
}

func (s *perfumeService) GetPerfumeByID(ctx context.Context, id uint64) (*domain.PerfumeWithAccords, error) {
	if id == 0 {
		logger.Error("invalid perfume id")
		return nil, errors.New("invalid perfume id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get perfume by id")
		return nil, fmt.Errorf("context error: %w", err)
	}

	perfume, err := s.perfumeRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find perfume by id", err.Error())
		return nil, err
	}

	return &perfume, nil
}

func (s *perfumeService) CreatePerfume(ctx context.Context, perfume *domain.Perfume, accords []string) (*domain.Perfume, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create perfume")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validatePerfume(perfume); err != nil {
		logger.Error("invalid perfume data", err.Error())
		return nil, err
	}

	if perfume.ExternalID == "" {
		perfume.ExternalID = uuid.NewString()
	}

	if err := s.perfumeRepo.Create(ctx, perfume, accords); err != nil {
		logger.Error("failed to create new perfume", err)
		return nil, fmt.Errorf("failed to create perfume: %w", err)
	}

	logger.Info("perfume created successfully", "perfume_id", perfume.ID)

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return perfume, nil
}

func (s *perfumeService) UpdatePerfume(ctx context.Context, perfume *domain.Perfume, accords []string) (*domain.Perfume, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating perfume")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if perfume.ID == 0 {
		logger.Error("invalid perfume data: ID is required")
		return nil, errors.New("perfume ID is required")
	}

	if err := validatePerfume(perfume); err != nil {
		logger.Error("invalid perfume data", err.Error())
		return nil, err
	}

	// Verify perfume exists
	if _, err := s.perfumeRepo.FindByID(ctx, perfume.ID); err != nil {
		logger.Error("perfume not found", err)
		return nil, errors.New("perfume not found")
	}

	if err := s.perfumeRepo.Update(ctx, perfume, accords); err != nil {
		logger.Error("failed to update perfume", err)
		return nil, fmt.Errorf("failed to update perfume: %w", err)
	}

	updated, err := s.perfumeRepo.FindByID(ctx, perfume.ID)
	if err != nil {
		logger.Error("failed to fetch updated perfume", err)
		return nil, fmt.Errorf("failed to fetch updated perfume: %w", err)
	}

	logger.Info("perfume updated success", "perfume_id", perfume.ID)

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return &updated.Perfume, nil
}

func (s *perfumeService) DeletePerfume(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("invalid perfume id when deleting perfume")
		return errors.New("invalid perfume id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting perfume")
		return fmt.Errorf("context error: %w", err)
	}

	// Verify perfume exists
	if _, err := s.perfumeRepo.FindByID(ctx, id); err != nil {
		logger.Error("perfume not found", err)
		return errors.New("perfume not found")
	}

	if err := s.perfumeRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete perfume", err)
		return fmt.Errorf("failed to delete perfume: %w", err)
	}

	logger.Info("perfume deleted success", "perfume_id", id)

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return nil
}

func validatePerfume(perfume *domain.Perfume) error {
	if perfume.Name == "" {
		return errors.New("perfume name is required")
	}

	if perfume.Brand == "" {
		return errors.New("perfume brand is required")
	}

	switch perfume.Gender {
	case domain.GenderMale, domain.GenderFemale, domain.GenderUnisex:
	default:
		return errors.New("perfume gender must be male, female or unisex")
	}

	if perfume.PricePerML < 0 {
		return errors.New("price per ml cannot be negative")
	}

	return nil
}
