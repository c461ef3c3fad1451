package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hyperpart/pkg/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func newRun(uuid string) *model.Run {
	return &model.Run{
		RunUUID:  uuid,
		InputKey: "inputs/" + uuid + ".hgr",
		Stats:    model.RunStats{InitialNodes: 100, InitialEdges: 50},
	}
}

func TestGormRunRepository_CreateAndGet(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))
	ctx := context.Background()

	run := newRun("run-1")
	require.NoError(t, repo.CreateRun(ctx, run))
	assert.NotZero(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := repo.GetRunByUUID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "inputs/run-1.hgr", got.InputKey)
	assert.Equal(t, 100, got.Stats.InitialNodes)
}

func TestGormRunRepository_GetRunByUUID_NotFound(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))

	got, err := repo.GetRunByUUID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "run not found")
}

func TestGormRunRepository_GetQueuedRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRunRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRun(ctx, newRun("run-a")))
	require.NoError(t, repo.CreateRun(ctx, newRun("run-b")))

	done := newRun("run-c")
	require.NoError(t, repo.CreateRun(ctx, done))
	require.NoError(t, repo.UpdateRunStatus(ctx, done.ID, model.RunStatusCompleted, ""))

	runs, err := repo.GetQueuedRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].RunUUID)
	assert.Equal(t, "run-b", runs[1].RunUUID)
}

func TestGormRunRepository_LockRunForProcessing(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))
	ctx := context.Background()

	run := newRun("run-lock")
	require.NoError(t, repo.CreateRun(ctx, run))

	locked, err := repo.LockRunForProcessing(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	// Second claim must fail: the run is no longer queued.
	locked, err = repo.LockRunForProcessing(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, locked)

	got, err := repo.GetRunByUUID(ctx, "run-lock")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.NotNil(t, got.BeginTime)
}

func TestGormRunRepository_LockMissingRun(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))

	locked, err := repo.LockRunForProcessing(context.Background(), 12345)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGormRunRepository_UpdateRunStatus(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))
	ctx := context.Background()

	run := newRun("run-status")
	require.NoError(t, repo.CreateRun(ctx, run))

	require.NoError(t, repo.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed, "parse error"))

	got, err := repo.GetRunByUUID(ctx, "run-status")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "parse error", got.StatusInfo)
	assert.NotNil(t, got.EndTime)

	assert.Error(t, repo.UpdateRunStatus(ctx, 9999, model.RunStatusFailed, ""))
}

func TestGormRunRepository_CompleteRun(t *testing.T) {
	repo := NewGormRunRepository(setupTestDB(t))
	ctx := context.Background()

	run := newRun("run-done")
	require.NoError(t, repo.CreateRun(ctx, run))

	stats := model.RunStats{
		InitialNodes:   100,
		CoarseNodes:    25,
		NumCommunities: 4,
		Contractions:   75,
	}
	timings := []model.PhaseTiming{
		model.NewPhaseTiming("extract", 12*time.Millisecond),
		model.NewPhaseTiming("merge", 7*time.Millisecond),
	}

	require.NoError(t, repo.CompleteRun(ctx, run.ID, stats, timings))

	got, err := repo.GetRunByUUID(ctx, "run-done")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.Equal(t, 25, got.Stats.CoarseNodes)
	assert.Equal(t, 75, got.Stats.Contractions)
	assert.NotNil(t, got.EndTime)
}
