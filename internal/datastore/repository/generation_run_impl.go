package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/threshgen/threshgen/internal/datastore/entities"
)

// generationRunRepository implements GenerationRunRepository.
type generationRunRepository struct {
	db *gorm.DB
}

// NewGenerationRunRepository creates a new GenerationRunRepository.
func NewGenerationRunRepository(db *gorm.DB) GenerationRunRepository {
	return &generationRunRepository{db: db}
}

// SaveRun inserts a run together with its UEIs.
func (r *generationRunRepository) SaveRun(ctx context.Context, run *entities.GenerationRun) error {
	if run.RunID == "" {
		return fmt.Errorf("failed to save generation run: missing run ID")
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save generation run: %w", err)
	}
	return nil
}

// GetRun returns a run and its UEIs by run ID.
func (r *generationRunRepository) GetRun(ctx context.Context, runID string) (*entities.GenerationRun, error) {
	var run entities.GenerationRun
	err := r.db.WithContext(ctx).
		Preload("UEIs", func(db *gorm.DB) *gorm.DB { return db.Order("uei ASC") }).
		Where("run_id = ?", runID).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get generation run %s: %w", runID, err)
	}
	return &run, nil
}

// LatestRun returns the most recent run for an OpenNMS home, with its UEIs.
func (r *generationRunRepository) LatestRun(ctx context.Context, opennmsHome string) (*entities.GenerationRun, error) {
	var run entities.GenerationRun
	err := r.db.WithContext(ctx).
		Preload("UEIs", func(db *gorm.DB) *gorm.DB { return db.Order("uei ASC") }).
		Where("opennms_home = ?", opennmsHome).
		Order("started_at DESC").Order("id DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get latest generation run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first, without their UEIs, and the total count.
func (r *generationRunRepository) ListRuns(ctx context.Context, filter RunFilter) ([]entities.GenerationRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.GenerationRun{})
	if filter.OpennmsHome != "" {
		query = query.Where("opennms_home = ?", filter.OpennmsHome)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count generation runs: %w", err)
	}

	var runs []entities.GenerationRun
	q := query.Session(&gorm.Session{}).Order("started_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list generation runs: %w", err)
	}
	return runs, total, nil
}

// DeleteRunsBefore removes runs started before the given time and their UEIs.
func (r *generationRunRepository) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&entities.GenerationRun{}).Select("id").Where("started_at < ?", before)
		if err := tx.Where("run_id IN (?)", old).Delete(&entities.GeneratedUEI{}).Error; err != nil {
			return fmt.Errorf("failed to delete generated UEIs: %w", err)
		}
		result := tx.Where("started_at < ?", before).Delete(&entities.GenerationRun{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete generation runs: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
