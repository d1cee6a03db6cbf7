package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
)

const (
	maxTransitionAttempts = 3
	notifyTimeout         = 10 * time.Second
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByCode(ctx context.Context, code string) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindOpen(ctx context.Context, states []domain.EventState) ([]domain.Event, error)
	FindAll(ctx context.Context, state domain.EventState) ([]domain.Event, error)
	ApplyTransition(ctx context.Context, eventID string, t domain.Transition, at time.Time) (bool, error)
}

type EventNotifier interface {
	EventEnded(ctx context.Context, event domain.Event) error
}

type EventService struct {
	repo     EventRepository
	notifier EventNotifier
	conf     *config.EventsConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewEventService(repo EventRepository, notifier EventNotifier, conf *config.EventsConfig, m *metrics.Metrics) *EventService {
	return &EventService{
		repo:     repo,
		notifier: notifier,
		conf:     conf,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	initial, err := domain.ParseState(s.conf.InitialState)
	if err != nil {
		initial = domain.StateActive
	}

	event.State = initial
	event.SimType = domain.SimTypePortfolio
	event.StartedAt = nil
	event.EndedAt = nil
	if event.DurationMinutes <= 0 {
		event.DurationMinutes = s.conf.DefaultDurationMinutes
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		if errors.Is(err, ErrEventCodeExists) {
			return domain.Event{}, ErrEventCodeExists
		}

		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// ListPublic returns events participants can see: active, live or paused and not ended, newest first.
func (s *EventService) ListPublic(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindOpen(ctx, domain.PublicStates)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindOpen -> %w", err)
	}

	return events, nil
}

// ListAll is the admin view. An empty state lists everything.
func (s *EventService) ListAll(ctx context.Context, state domain.EventState) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}

func (s *EventService) GetByCode(ctx context.Context, code string) (domain.Event, error) {
	event, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return event, nil
}

// Transition applies action to the event identified by code.
// The write is a compare-and-set on the state read just before; a lost race re-reads and re-decides.
func (s *EventService) Transition(ctx context.Context, code string, action domain.Action) (domain.Event, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		event, err := s.GetByCode(ctx, code)
		if err != nil {
			return domain.Event{}, err
		}

		t, err := domain.NextState(event.State, action)
		if err != nil {
			s.metrics.IncTransition(string(action), "rejected")
			return domain.Event{}, err
		}
		if t.NoOp {
			s.metrics.IncTransition(string(action), "noop")
			return event, nil
		}

		applied, err := s.repo.ApplyTransition(ctx, event.ID, t, s.now())
		if err != nil {
			return domain.Event{}, fmt.Errorf("s.repo.ApplyTransition -> %w", err)
		}
		if !applied {
			continue
		}

		updated, err := s.repo.FindByID(ctx, event.ID)
		if err != nil {
			return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
		}

		s.metrics.IncTransition(string(action), "applied")
		if t.StampsEnd() {
			s.notifyEnded(updated)
		}

		return updated, nil
	}

	return domain.Event{}, ErrTransitionContention
}

// notifyEnded is fire-and-forget: the transition has already committed.
func (s *EventService) notifyEnded(event domain.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.EventEnded(ctx, event); err != nil {
			zap.L().Warn("failed to publish event ended",
				zap.String("event_code", event.Code),
				zap.Error(err),
			)
		}
	}()
}
