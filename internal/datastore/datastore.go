// Package datastore opens the generation history database.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/threshgen/threshgen/internal/datastore/entities"
)

// Open opens (creating if needed) the sqlite database at path and migrates it.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=ON"), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the history tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.GenerationRun{}, &entities.GeneratedUEI{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return nil
}

// Close releases the database connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// DiffUEIs compares the UEIs of two runs. A nil previous run reports every
// current UEI as added. Both results are sorted.
func DiffUEIs(prev, cur *entities.GenerationRun) (added, removed []string) {
	before := ueiSet(prev)
	after := ueiSet(cur)

	for uei := range after {
		if _, ok := before[uei]; !ok {
			added = append(added, uei)
		}
	}
	for uei := range before {
		if _, ok := after[uei]; !ok {
			removed = append(removed, uei)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

func ueiSet(run *entities.GenerationRun) map[string]struct{} {
	set := make(map[string]struct{})
	if run == nil {
		return set
	}
	for i := range run.UEIs {
		set[run.UEIs[i].UEI] = struct{}{}
	}
	return set
}
