package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"silleShop/domain"

	"gorm.io/gorm"
)

type PerfumeRepository struct {
	DB *gorm.DB
}

func NewPerfumeRepository(db *gorm.DB) *PerfumeRepository {
	return &PerfumeRepository{
		DB: db,
	}
}

// Create stores the perfume together with its ordered accord list. Accord
// rows are get-or-created by name so the accord table stays append-only.
func (r *PerfumeRepository) Create(ctx context.Context, perfume *domain.Perfume, accords []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(perfume).Error; err != nil {
			return fmt.Errorf("failed to create perfume: %w", err)
		}
		return replaceAccords(tx, perfume.ID, accords)
	})
}

func (r *PerfumeRepository) FindByID(ctx context.Context, id uint64) (domain.PerfumeWithAccords, error) {
	if err := ctx.Err(); err != nil {
		return domain.PerfumeWithAccords{}, fmt.Errorf("context error: %w", err)
	}

	var perfume domain.Perfume
	err := r.DB.WithContext(ctx).First(&perfume, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PerfumeWithAccords{}, errors.New("perfume not found")
		}
		return domain.PerfumeWithAccords{}, fmt.Errorf("failed to find perfume: %w", err)
	}

	accords, err := r.accordNames(ctx, id)
	if err != nil {
		return domain.PerfumeWithAccords{}, err
	}

	return domain.PerfumeWithAccords{Perfume: perfume, Accords: accords}, nil
}

func (r *PerfumeRepository) FindAll(ctx context.Context) ([]domain.Perfume, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var perfumes []domain.Perfume
	if err := r.DB.WithContext(ctx).Order("id").Find(&perfumes).Error; err != nil {
		return nil, fmt.Errorf("failed to find perfumes: %w", err)
	}

	return perfumes, nil
}

// FindAllWithAccords loads the whole catalog with accord names ordered by
// predominance. This is the read model behind the vectorized snapshot.
func (r *PerfumeRepository) FindAllWithAccords(ctx context.Context) ([]domain.PerfumeWithAccords, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	perfumes, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	type accordRow struct {
		PerfumeID uint64
		Name      string
	}
	var rows []accordRow
	err = r.DB.WithContext(ctx).
		Table("perfume_accords").
		Select("perfume_accords.perfume_id, accords.name").
		Joins("JOIN accords ON accords.id = perfume_accords.accord_id").
		Order("perfume_accords.perfume_id, perfume_accords.position").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load perfume accords: %w", err)
	}

	byPerfume := make(map[uint64][]string, len(perfumes))
	for _, row := range rows {
		byPerfume[row.PerfumeID] = append(byPerfume[row.PerfumeID], row.Name)
	}

	result := make([]domain.PerfumeWithAccords, 0, len(perfumes))
	for _, p := range perfumes {
		result = append(result, domain.PerfumeWithAccords{
			Perfume: p,
			Accords: byPerfume[p.ID],
		})
	}

	return result, nil
}

// CatalogVersion derives a token that moves whenever any perfume row
// changes, including rating aggregate updates. The snapshot provider
// rebuilds only when this token moves.
func (r *PerfumeRepository) CatalogVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	var row struct {
		Count     int64
		IDSum     int64
		UpdatedAt *time.Time
	}
	err := r.DB.WithContext(ctx).
		Table("perfumes").
		Select("COUNT(*) AS count, COALESCE(SUM(id), 0) AS id_sum, MAX(updated_at) AS updated_at").
		Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to read catalog version: %w", err)
	}

	var updated int64
	if row.UpdatedAt != nil {
		updated = row.UpdatedAt.UnixNano()
	}
	return fmt.Sprintf("%d:%d:%d", row.Count, row.IDSum, updated), nil
}

func (r *PerfumeRepository) Update(ctx context.Context, perfume *domain.Perfume, accords []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Perfume
		if err := tx.First(&existing, perfume.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("perfume not found")
			}
			return fmt.Errorf("failed to find perfume: %w", err)
		}

		updateData := map[string]interface{}{
			"external_id":   perfume.ExternalID,
			"name":          perfume.Name,
			"brand":         perfume.Brand,
			"gender":        perfume.Gender,
			"description":   perfume.Description,
			"price_per_ml":  perfume.PricePerML,
			"thumbnail_url": perfume.ThumbnailURL,
			"popularity":    perfume.Popularity,
			"updated_at":    time.Now(),
		}
		if err := tx.Model(&domain.Perfume{}).Where("id = ?", perfume.ID).Updates(updateData).Error; err != nil {
			return fmt.Errorf("failed to update perfume: %w", err)
		}

		if accords != nil {
			if err := tx.Where("perfume_id = ?", perfume.ID).Delete(&domain.PerfumeAccord{}).Error; err != nil {
				return fmt.Errorf("failed to clear perfume accords: %w", err)
			}
			return replaceAccords(tx, perfume.ID, accords)
		}
		return nil
	})
}

// Delete removes the perfume and cascades to its accord links, ratings,
// and every match row that references it.
func (r *PerfumeRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Perfume{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete perfume: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("perfume not found or already deleted")
		}

		if err := tx.Where("perfume_id = ?", id).Delete(&domain.PerfumeAccord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("perfume_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("perfume_id = ?", id).Delete(&domain.PerfumeMatch{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (r *PerfumeRepository) accordNames(ctx context.Context, perfumeID uint64) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).
		Table("perfume_accords").
		Select("accords.name").
		Joins("JOIN accords ON accords.id = perfume_accords.accord_id").
		Where("perfume_accords.perfume_id = ?", perfumeID).
		Order("perfume_accords.position").
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load accords: %w", err)
	}
	return names, nil
}

func replaceAccords(tx *gorm.DB, perfumeID uint64, accords []string) error {
	for i, name := range accords {
		var accord domain.Accord
		err := tx.Where("name = ?", name).FirstOrCreate(&accord, domain.Accord{Name: name}).Error
		if err != nil {
			return fmt.Errorf("failed to get or create accord %q: %w", name, err)
		}

		link := domain.PerfumeAccord{
			PerfumeID: perfumeID,
			AccordID:  accord.ID,
			Position:  i,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link accord %q: %w", name, err)
		}
	}
	return nil
}
