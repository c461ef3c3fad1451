package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hyperpart/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// CreateRun inserts a new queued run and fills its ID.
func (r *GormRunRepository) CreateRun(ctx context.Context, run *model.Run) error {
	if run.Status == "" {
		run.Status = model.RunStatusQueued
	}
	record, err := FromModel(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	run.ID = record.ID
	run.CreateTime = record.CreateTime
	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, uuid string) (*model.Run, error) {
	var record CoarseningRun

	err := r.db.WithContext(ctx).Where("run_uuid = ?", uuid).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run not found: %s", uuid)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return record.ToModel()
}

// GetQueuedRuns retrieves runs waiting to be processed, oldest first.
func (r *GormRunRepository) GetQueuedRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	var records []CoarseningRun

	err := r.db.WithContext(ctx).
		Where("status = ?", model.RunStatusQueued).
		Order("id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query queued runs: %w", err)
	}

	runs := make([]*model.Run, 0, len(records))
	for i := range records {
		run, err := records[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", records[i].RunUUID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// LockRunForProcessing atomically claims a queued run. The conditional
// update is a single statement, so concurrent workers cannot claim the same
// run on any of the supported backends.
func (r *GormRunRepository) LockRunForProcessing(ctx context.Context, id int64) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&CoarseningRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusQueued).
		Updates(map[string]interface{}{
			"status":     model.RunStatusRunning,
			"begin_time": &now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to lock run %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// UpdateRunStatus updates the status and status info of a run.
func (r *GormRunRepository) UpdateRunStatus(ctx context.Context, id int64, status model.RunStatus, info string) error {
	updates := map[string]interface{}{
		"status":      status,
		"status_info": info,
	}
	if status.IsTerminal() {
		now := time.Now()
		updates["end_time"] = &now
	}

	result := r.db.WithContext(ctx).
		Model(&CoarseningRun{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update run status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found: %d", id)
	}

	return nil
}

// CompleteRun marks a run completed and stores its statistics and timings.
func (r *GormRunRepository) CompleteRun(ctx context.Context, id int64, stats model.RunStats, timings []model.PhaseTiming) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	timingsJSON, err := json.Marshal(timings)
	if err != nil {
		return fmt.Errorf("failed to encode timings: %w", err)
	}

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&CoarseningRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   model.RunStatusCompleted,
			"stats":    JSONField(statsJSON),
			"timings":  JSONField(timingsJSON),
			"end_time": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found: %d", id)
	}

	return nil
}
