package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/threshgen/threshgen/internal/datastore/entities"
)

// setupHistoryTestDB creates an in-memory SQLite database for history tests.
// Uses shared-cache mode with a single connection so every operation sees
// the same database.
func setupHistoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=ON"), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get sql.DB")
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&entities.GenerationRun{}, &entities.GeneratedUEI{})
	require.NoError(t, err, "failed to migrate history tables")
	return db
}

// createTestRun saves a run started at the given time with the given UEIs.
func createTestRun(t *testing.T, repo GenerationRunRepository, home string, started time.Time, ueis ...string) *entities.GenerationRun {
	t.Helper()
	run := &entities.GenerationRun{
		RunID:       uuid.NewString(),
		OpennmsHome: home,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Second),
		EventCount:  len(ueis),
	}
	for _, u := range ueis {
		run.UEIs = append(run.UEIs, entities.GeneratedUEI{UEI: u, Severity: "Warning"})
	}
	require.NoError(t, repo.SaveRun(t.Context(), run))
	return run
}

func TestGenerationRunRepository_SaveAndGet(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	saved := createTestRun(t, repo, "/opt/opennms", now,
		"uei.opennms.org/threshold/lowThresholdExceeded",
		"uei.opennms.org/threshold/highThresholdExceeded",
	)
	assert.NotZero(t, saved.ID)

	got, err := repo.GetRun(t.Context(), saved.RunID)
	require.NoError(t, err)
	assert.Equal(t, "/opt/opennms", got.OpennmsHome)
	assert.Equal(t, 2, got.EventCount)
	assert.Equal(t, time.Second, got.Duration())
	require.Len(t, got.UEIs, 2)
	assert.Equal(t, "uei.opennms.org/threshold/highThresholdExceeded", got.UEIs[0].UEI, "UEIs are ordered")
}

func TestGenerationRunRepository_SaveRequiresRunID(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)

	err := repo.SaveRun(t.Context(), &entities.GenerationRun{StartedAt: time.Now(), FinishedAt: time.Now()})
	require.Error(t, err)
}

func TestGenerationRunRepository_GetRunNotFound(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)

	_, err := repo.GetRun(t.Context(), uuid.NewString())
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = repo.LatestRun(t.Context(), "/opt/opennms")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestGenerationRunRepository_LatestRun(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)
	base := time.Now().UTC().Add(-time.Hour)

	createTestRun(t, repo, "/opt/opennms", base, "a")
	latest := createTestRun(t, repo, "/opt/opennms", base.Add(30*time.Minute), "a", "b")
	createTestRun(t, repo, "/srv/other", base.Add(45*time.Minute), "c")

	got, err := repo.LatestRun(t.Context(), "/opt/opennms")
	require.NoError(t, err)
	assert.Equal(t, latest.RunID, got.RunID)
	assert.Len(t, got.UEIs, 2)
}

func TestGenerationRunRepository_ListRuns(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 5 {
		createTestRun(t, repo, "/opt/opennms", base.Add(time.Duration(i)*time.Minute), "a")
	}
	createTestRun(t, repo, "/srv/other", base, "a")

	tests := []struct {
		name      string
		filter    RunFilter
		wantLen   int
		wantTotal int64
	}{
		{"all", RunFilter{}, 6, 6},
		{"by home", RunFilter{OpennmsHome: "/opt/opennms"}, 5, 5},
		{"limited", RunFilter{OpennmsHome: "/opt/opennms", Limit: 2}, 2, 5},
		{"offset", RunFilter{OpennmsHome: "/opt/opennms", Limit: 10, Offset: 4}, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, total, err := repo.ListRuns(t.Context(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, runs, tt.wantLen)
			assert.Equal(t, tt.wantTotal, total)
		})
	}

	runs, _, err := repo.ListRuns(t.Context(), RunFilter{OpennmsHome: "/opt/opennms", Limit: 2})
	require.NoError(t, err)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt), "newest first")
}

func TestGenerationRunRepository_DeleteRunsBefore(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewGenerationRunRepository(db)
	now := time.Now().UTC()

	createTestRun(t, repo, "/opt/opennms", now.Add(-48*time.Hour), "old-a", "old-b")
	keep := createTestRun(t, repo, "/opt/opennms", now.Add(-time.Hour), "new")

	deleted, err := repo.DeleteRunsBefore(t.Context(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, total, err := repo.ListRuns(t.Context(), RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, keep.RunID, runs[0].RunID)

	var ueiCount int64
	require.NoError(t, db.Model(&entities.GeneratedUEI{}).Count(&ueiCount).Error)
	assert.Equal(t, int64(1), ueiCount, "UEIs of deleted runs are removed")
}
