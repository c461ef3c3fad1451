package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/hyperpart/pkg/model"
)

// JSONField stores a JSON document in a text/json column.
type JSONField []byte

// Value implements driver.Valuer.
func (f JSONField) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return []byte(f), nil
}

// Scan implements sql.Scanner.
func (f *JSONField) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*f = nil
	case []byte:
		*f = append((*f)[:0], v...)
	case string:
		*f = JSONField(v)
	default:
		return errors.New("unsupported type for JSONField")
	}
	return nil
}

// CoarseningRun represents the coarsening_run table.
type CoarseningRun struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID      string          `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	InputKey     string          `gorm:"column:input_key;type:varchar(512)"`
	CommunityKey string          `gorm:"column:community_key;type:varchar(512)"`
	Status       model.RunStatus `gorm:"column:status;type:varchar(16);index"`
	StatusInfo   string          `gorm:"column:status_info;type:text"`
	Stats        JSONField       `gorm:"column:stats;type:json"`
	Timings      JSONField       `gorm:"column:timings;type:json"`
	CreateTime   time.Time       `gorm:"column:create_time;autoCreateTime"`
	BeginTime    *time.Time      `gorm:"column:begin_time"`
	EndTime      *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for CoarseningRun.
func (CoarseningRun) TableName() string {
	return "coarsening_run"
}

// ToModel converts CoarseningRun to model.Run.
func (r *CoarseningRun) ToModel() (*model.Run, error) {
	run := &model.Run{
		ID:           r.ID,
		RunUUID:      r.RunUUID,
		InputKey:     r.InputKey,
		CommunityKey: r.CommunityKey,
		Status:       r.Status,
		StatusInfo:   r.StatusInfo,
		CreateTime:   r.CreateTime,
		BeginTime:    r.BeginTime,
		EndTime:      r.EndTime,
	}
	if len(r.Stats) > 0 {
		if err := json.Unmarshal(r.Stats, &run.Stats); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// FromModel converts model.Run to a CoarseningRun record.
func FromModel(run *model.Run) (*CoarseningRun, error) {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return nil, err
	}
	return &CoarseningRun{
		ID:           run.ID,
		RunUUID:      run.RunUUID,
		InputKey:     run.InputKey,
		CommunityKey: run.CommunityKey,
		Status:       run.Status,
		StatusInfo:   run.StatusInfo,
		Stats:        stats,
		BeginTime:    run.BeginTime,
		EndTime:      run.EndTime,
	}, nil
}
