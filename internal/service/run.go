package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/repository"
)

type RunRepository interface {
	Create(ctx context.Context, run domain.Run) (domain.Run, error)
	FindByID(ctx context.Context, id string) (domain.Run, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Run, error)
	FindResult(ctx context.Context, runID string) (*domain.Result, error)
	FindResultsByRunIDs(ctx context.Context, runIDs []string) (map[string]domain.Result, error)
	SaveResult(ctx context.Context, result domain.Result) (domain.Result, error)
}

type RunEventRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Event, error)
}

type ProfileRecorder interface {
	RecordEmail(ctx context.Context, id, email string) error
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, identity domain.Identity) (bool, error)
}

type RunService struct {
	runs     RunRepository
	events   RunEventRepository
	profiles ProfileRecorder
	admins   AdminChecker
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRunService(runs RunRepository, events RunEventRepository, profiles ProfileRecorder, admins AdminChecker, m *metrics.Metrics) *RunService {
	return &RunService{
		runs:     runs,
		events:   events,
		profiles: profiles,
		admins:   admins,
		metrics:  m,
		now:      time.Now,
	}
}

// CreateRun opens a new run for the caller. Several runs per user and event are allowed.
func (s *RunService) CreateRun(ctx context.Context, eventCode string, identity domain.Identity) (domain.RunLaunch, error) {
	event, err := s.events.FindByCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.RunLaunch{}, ErrEventNotFound
		}

		return domain.RunLaunch{}, fmt.Errorf("s.events.FindByCode -> %w", err)
	}

	if !event.State.Joinable() {
		return domain.RunLaunch{}, &StateError{Err: ErrEventNotJoinable, State: event.State}
	}

	run, err := s.runs.Create(ctx, domain.Run{
		EventID: event.ID,
		UserID:  identity.UserID,
	})
	if err != nil {
		return domain.RunLaunch{}, fmt.Errorf("s.runs.Create -> %w", err)
	}

	s.metrics.IncRunsCreated()

	if identity.Verified && identity.Email != "" {
		if err = s.profiles.RecordEmail(ctx, identity.UserID, identity.Email); err != nil {
			zap.L().Warn("failed to record participant email",
				zap.String("user_id", identity.UserID),
				zap.Error(err),
			)
		}
	}

	return domain.RunLaunch{
		RunID:  run.ID,
		SimURL: withRunID(event.SimURL, run.ID),
	}, nil
}

// SubmitResult records the single final result of a run.
// The insert and the finished_at update commit together; a second submission always conflicts.
func (s *RunService) SubmitResult(ctx context.Context, identity domain.Identity, submission domain.Submission) (domain.Result, error) {
	run, err := s.runs.FindByID(ctx, submission.RunID)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			return domain.Result{}, ErrRunNotFound
		}

		return domain.Result{}, fmt.Errorf("s.runs.FindByID -> %w", err)
	}

	event, err := s.events.FindByID(ctx, run.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.Result{}, ErrEventNotFound
		}

		return domain.Result{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if err = s.authorizeRunAccess(ctx, identity, run); err != nil {
		return domain.Result{}, err
	}

	if !event.State.AcceptsResults() {
		s.metrics.IncResult("rejected")
		return domain.Result{}, &StateError{Err: ErrResultNotAccepted, State: event.State}
	}

	if run.Finished() {
		s.metrics.IncResult("duplicate")
		return domain.Result{}, ErrResultAlreadySubmitted
	}

	saved, err := s.runs.SaveResult(ctx, submission.Result(s.now()))
	if err != nil {
		if errors.Is(err, repository.ErrResultExists) {
			s.metrics.IncResult("duplicate")
			return domain.Result{}, ErrResultAlreadySubmitted
		}

		return domain.Result{}, fmt.Errorf("s.runs.SaveResult -> %w", err)
	}

	s.metrics.IncResult("accepted")

	return saved, nil
}

// GetRunDetail returns a run with its event and result. Only the owner or an admin may read it.
func (s *RunService) GetRunDetail(ctx context.Context, identity domain.Identity, runID string) (domain.RunDetail, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			return domain.RunDetail{}, ErrRunNotFound
		}

		return domain.RunDetail{}, fmt.Errorf("s.runs.FindByID -> %w", err)
	}

	if err = s.authorizeRunAccess(ctx, identity, run); err != nil {
		return domain.RunDetail{}, err
	}

	event, err := s.events.FindByID(ctx, run.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.RunDetail{}, ErrEventNotFound
		}

		return domain.RunDetail{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	result, err := s.runs.FindResult(ctx, run.ID)
	if err != nil {
		return domain.RunDetail{}, fmt.Errorf("s.runs.FindResult -> %w", err)
	}

	return domain.RunDetail{
		Run:    run,
		Event:  event,
		Result: result,
	}, nil
}

// GetHistory lists the user's runs newest first, each with its event and result.
func (s *RunService) GetHistory(ctx context.Context, userID string) ([]domain.RunHistoryEntry, error) {
	runs, err := s.runs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.runs.FindByUserID -> %w", err)
	}

	eventIDs := make([]string, 0, len(runs))
	runIDs := make([]string, 0, len(runs))
	seen := make(map[string]bool, len(runs))
	for _, run := range runs {
		runIDs = append(runIDs, run.ID)
		if !seen[run.EventID] {
			seen[run.EventID] = true
			eventIDs = append(eventIDs, run.EventID)
		}
	}

	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindByIDs -> %w", err)
	}

	results, err := s.runs.FindResultsByRunIDs(ctx, runIDs)
	if err != nil {
		return nil, fmt.Errorf("s.runs.FindResultsByRunIDs -> %w", err)
	}

	history := make([]domain.RunHistoryEntry, 0, len(runs))
	for _, run := range runs {
		entry := domain.RunHistoryEntry{Run: run}
		if event, ok := events[run.EventID]; ok {
			entry.EventCode = event.Code
			entry.EventName = event.Name
		}
		if result, ok := results[run.ID]; ok {
			entry.Result = &result
		}
		history = append(history, entry)
	}

	return history, nil
}

func (s *RunService) authorizeRunAccess(ctx context.Context, identity domain.Identity, run domain.Run) error {
	if run.UserID == identity.UserID {
		return nil
	}

	admin, err := s.admins.IsAdmin(ctx, identity)
	if err != nil {
		return fmt.Errorf("s.admins.IsAdmin -> %w", err)
	}
	if !admin {
		return ErrForbidden
	}

	return nil
}

func withRunID(simURL, runID string) string {
	sep := "?"
	if strings.Contains(simURL, "?") {
		sep = "&"
	}

	return simURL + sep + "run_id=" + url.QueryEscape(runID)
}
