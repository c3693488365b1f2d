// Package repository persists generation runs.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/threshgen/threshgen/internal/datastore/entities"
)

// ErrRunNotFound is returned when no matching generation run exists.
var ErrRunNotFound = errors.New("generation run not found")

// GenerationRunRepository stores and queries generation runs.
type GenerationRunRepository interface {
	SaveRun(ctx context.Context, run *entities.GenerationRun) error
	GetRun(ctx context.Context, runID string) (*entities.GenerationRun, error)
	LatestRun(ctx context.Context, opennmsHome string) (*entities.GenerationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]entities.GenerationRun, int64, error)
	DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error)
}

// RunFilter controls run listing queries.
type RunFilter struct {
	OpennmsHome string
	Limit       int
	Offset      int
}
