package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

var (
	ErrEventCodeExists = dao.ErrEventCodeExists
	ErrEventNotFound   = dao.ErrEventNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByCode(ctx context.Context, code string) (dao.Event, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]dao.Event, error)
	FindOpen(ctx context.Context, states []string) ([]dao.Event, error)
	FindAll(ctx context.Context, state string) ([]dao.Event, error)
	UpdateState(ctx context.Context, c dao.StateChange) (bool, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, dao.Event{
		Code:            event.Code,
		Name:            event.Name,
		SimType:         event.SimType,
		ScenarioID:      event.ScenarioID,
		SimURL:          event.SimURL,
		DurationMinutes: event.DurationMinutes,
		State:           string(event.State),
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByCode(ctx context.Context, code string) (domain.Event, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Event, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	events := make(map[string]domain.Event, len(found))
	for _, e := range found {
		events[e.ID] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) FindOpen(ctx context.Context, states []domain.EventState) ([]domain.Event, error) {
	raw := make([]string, 0, len(states))
	for _, s := range states {
		raw = append(raw, string(s))
	}

	found, err := r.dao.FindOpen(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOpen -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context, state domain.EventState) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx, string(state))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(found), nil
}

// ApplyTransition persists t for event if the stored state still equals t.From.
func (r *EventRepository) ApplyTransition(ctx context.Context, eventID string, t domain.Transition, at time.Time) (bool, error) {
	ok, err := r.dao.UpdateState(ctx, dao.StateChange{
		EventID:    eventID,
		From:       string(t.From),
		To:         string(t.To),
		StampStart: t.StampsStart(),
		StampEnd:   t.StampsEnd(),
		At:         at,
	})
	if err != nil {
		return false, fmt.Errorf("r.dao.UpdateState -> %w", err)
	}

	return ok, nil
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		out = append(out, r.daoToDomain(e))
	}

	return out
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:              e.ID,
		Code:            e.Code,
		Name:            e.Name,
		SimType:         e.SimType,
		ScenarioID:      e.ScenarioID,
		SimURL:          e.SimURL,
		DurationMinutes: e.DurationMinutes,
		State:           domain.EventState(e.State).Normalize(),
		StartedAt:       e.StartedAt,
		EndedAt:         e.EndedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
