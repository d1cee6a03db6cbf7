package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrResultExists  = errors.New("result already submitted")
	ErrResultMissing = errors.New("result not found")
)

type Run struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	EventID    string    `gorm:"index;not null;type:varchar(36)"`
	UserID     string    `gorm:"index;not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time
}

func (r *Run) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	return nil
}

type RunResult struct {
	ID          uint      `gorm:"primaryKey"`
	RunID       string    `gorm:"uniqueIndex;not null;type:varchar(36)"`
	Score       float64   `gorm:"not null"`
	PnL         *float64  `gorm:"column:pnl"`
	Sharpe      *float64
	MaxDrawdown *float64
	WinRate     *float64
	Extra       datatypes.JSON
	CreatedAt   time.Time `gorm:"not null"`
}

// EventResult is a result row joined with the owner of its run.
type EventResult struct {
	RunResult `gorm:"embedded"`
	UserID    string
}

type RunDAO struct {
	db *gorm.DB
}

func NewRunDAO(db *gorm.DB) *RunDAO {
	return &RunDAO{
		db: db,
	}
}

func (d *RunDAO) Insert(ctx context.Context, run Run) (Run, error) {
	if err := d.db.WithContext(ctx).Create(&run).Error; err != nil {
		return Run{}, err
	}

	return run, nil
}

func (d *RunDAO) FindByID(ctx context.Context, id string) (Run, error) {
	var run Run
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, ErrRunNotFound
	}

	return run, err
}

func (d *RunDAO) FindByUserID(ctx context.Context, userID string) ([]Run, error) {
	var runs []Run
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&runs).Error

	return runs, err
}

func (d *RunDAO) FindResultByRunID(ctx context.Context, runID string) (RunResult, error) {
	var result RunResult
	err := d.db.WithContext(ctx).Where("run_id = ?", runID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RunResult{}, ErrResultMissing
	}

	return result, err
}

func (d *RunDAO) FindResultsByRunIDs(ctx context.Context, runIDs []string) ([]RunResult, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}

	var results []RunResult
	err := d.db.WithContext(ctx).Where("run_id IN ?", runIDs).Find(&results).Error

	return results, err
}

func (d *RunDAO) FindResultsByEventID(ctx context.Context, eventID string) ([]EventResult, error) {
	var rows []EventResult
	err := d.db.WithContext(ctx).
		Table("run_results").
		Select("run_results.*, runs.user_id").
		Joins("JOIN runs ON runs.id = run_results.run_id").
		Where("runs.event_id = ?", eventID).
		Scan(&rows).Error

	return rows, err
}

// InsertResultAndFinish stores result and closes its run in one transaction.
// Losing either the unique run_id insert or the finished_at compare-and-set rolls both back.
func (d *RunDAO) InsertResultAndFinish(ctx context.Context, result RunResult) (RunResult, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&result).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrResultExists
			}

			return err
		}

		closed := tx.Model(&Run{}).
			Where("id = ? AND finished_at IS NULL", result.RunID).
			Update("finished_at", result.CreatedAt)
		if closed.Error != nil {
			return closed.Error
		}
		if closed.RowsAffected == 0 {
			return ErrResultExists
		}

		return nil
	})
	if err != nil {
		return RunResult{}, err
	}

	return result, nil
}
