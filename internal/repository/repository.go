// Package repository provides database abstraction for coarsening runs.
package repository

import (
	"context"

	"github.com/hyperpart/pkg/model"
)

// RunRepository defines the interface for coarsening-run persistence.
type RunRepository interface {
	// CreateRun inserts a new queued run and fills its ID.
	CreateRun(ctx context.Context, run *model.Run) error

	// GetRunByUUID retrieves a run by its UUID.
	GetRunByUUID(ctx context.Context, uuid string) (*model.Run, error)

	// GetQueuedRuns retrieves runs waiting to be processed, oldest first.
	GetQueuedRuns(ctx context.Context, limit int) ([]*model.Run, error)

	// LockRunForProcessing atomically claims a queued run; it returns false
	// when another worker got there first.
	LockRunForProcessing(ctx context.Context, id int64) (bool, error)

	// UpdateRunStatus updates the status and status info of a run.
	UpdateRunStatus(ctx context.Context, id int64, status model.RunStatus, info string) error

	// CompleteRun marks a run completed and stores its statistics and
	// per-phase timings.
	CompleteRun(ctx context.Context, id int64, stats model.RunStats, timings []model.PhaseTiming) error
}
