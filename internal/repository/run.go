package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

var (
	ErrRunNotFound  = dao.ErrRunNotFound
	ErrResultExists = dao.ErrResultExists
)

type RunDAO interface {
	Insert(ctx context.Context, run dao.Run) (dao.Run, error)
	FindByID(ctx context.Context, id string) (dao.Run, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Run, error)
	FindResultByRunID(ctx context.Context, runID string) (dao.RunResult, error)
	FindResultsByRunIDs(ctx context.Context, runIDs []string) ([]dao.RunResult, error)
	FindResultsByEventID(ctx context.Context, eventID string) ([]dao.EventResult, error)
	InsertResultAndFinish(ctx context.Context, result dao.RunResult) (dao.RunResult, error)
}

type RunRepository struct {
	dao RunDAO
}

func NewRunRepository(dao RunDAO) *RunRepository {
	return &RunRepository{
		dao: dao,
	}
}

func (r *RunRepository) Create(ctx context.Context, run domain.Run) (domain.Run, error) {
	created, err := r.dao.Insert(ctx, dao.Run{
		EventID: run.EventID,
		UserID:  run.UserID,
	})
	if err != nil {
		return domain.Run{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return runToDomain(created), nil
}

func (r *RunRepository) FindByID(ctx context.Context, id string) (domain.Run, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Run{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return runToDomain(found), nil
}

func (r *RunRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Run, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	runs := make([]domain.Run, 0, len(found))
	for _, run := range found {
		runs = append(runs, runToDomain(run))
	}

	return runs, nil
}

// FindResult returns nil while the run has no result yet.
func (r *RunRepository) FindResult(ctx context.Context, runID string) (*domain.Result, error) {
	found, err := r.dao.FindResultByRunID(ctx, runID)
	if errors.Is(err, dao.ErrResultMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindResultByRunID -> %w", err)
	}

	result := resultToDomain(found)

	return &result, nil
}

func (r *RunRepository) FindResultsByRunIDs(ctx context.Context, runIDs []string) (map[string]domain.Result, error) {
	found, err := r.dao.FindResultsByRunIDs(ctx, runIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindResultsByRunIDs -> %w", err)
	}

	results := make(map[string]domain.Result, len(found))
	for _, res := range found {
		results[res.RunID] = resultToDomain(res)
	}

	return results, nil
}

func (r *RunRepository) FindResultsByEventID(ctx context.Context, eventID string) ([]domain.RankedResult, error) {
	found, err := r.dao.FindResultsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindResultsByEventID -> %w", err)
	}

	results := make([]domain.RankedResult, 0, len(found))
	for _, row := range found {
		results = append(results, domain.RankedResult{
			Result: resultToDomain(row.RunResult),
			UserID: row.UserID,
		})
	}

	return results, nil
}

// SaveResult stores result and marks its run finished, atomically.
func (r *RunRepository) SaveResult(ctx context.Context, result domain.Result) (domain.Result, error) {
	var extra datatypes.JSON
	if len(result.Extra) > 0 {
		raw, err := json.Marshal(result.Extra)
		if err != nil {
			return domain.Result{}, fmt.Errorf("json.Marshal -> %w", err)
		}
		extra = raw
	}

	saved, err := r.dao.InsertResultAndFinish(ctx, dao.RunResult{
		RunID:       result.RunID,
		Score:       result.Score,
		PnL:         result.PnL,
		Sharpe:      result.Sharpe,
		MaxDrawdown: result.MaxDrawdown,
		WinRate:     result.WinRate,
		Extra:       extra,
		CreatedAt:   result.CreatedAt,
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("r.dao.InsertResultAndFinish -> %w", err)
	}

	return resultToDomain(saved), nil
}

func runToDomain(r dao.Run) domain.Run {
	return domain.Run{
		ID:         r.ID,
		EventID:    r.EventID,
		UserID:     r.UserID,
		CreatedAt:  r.CreatedAt,
		FinishedAt: r.FinishedAt,
	}
}

func resultToDomain(r dao.RunResult) domain.Result {
	var extra map[string]any
	if len(r.Extra) > 0 {
		// A malformed blob is dropped rather than failing the read.
		if err := json.Unmarshal(r.Extra, &extra); err != nil {
			zap.L().Warn("dropping malformed result extra",
				zap.String("run_id", r.RunID),
				zap.Error(err),
			)
			extra = nil
		}
	}

	return domain.Result{
		RunID:       r.RunID,
		Score:       r.Score,
		PnL:         r.PnL,
		Sharpe:      r.Sharpe,
		MaxDrawdown: r.MaxDrawdown,
		WinRate:     r.WinRate,
		Extra:       extra,
		CreatedAt:   r.CreatedAt,
	}
}
