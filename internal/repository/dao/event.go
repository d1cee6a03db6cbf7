package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventCodeExists = errors.New("event code already exists")
	ErrEventNotFound   = errors.New("event not found")
)

type Event struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	Code            string `gorm:"uniqueIndex;not null"`
	Name            string `gorm:"not null"`
	SimType         string `gorm:"not null"`
	ScenarioID      string `gorm:"not null"`
	SimURL          string `gorm:"not null"`
	DurationMinutes int    `gorm:"not null"`
	State           string `gorm:"index;not null"`
	StartedAt       *time.Time
	EndedAt         *time.Time
	CreatedAt       time.Time `gorm:"not null;index"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	return nil
}

// StateChange is a compare-and-set on events.state.
// Timestamps are only filled when still NULL.
type StateChange struct {
	EventID    string
	From       string
	To         string
	StampStart bool
	StampEnd   bool
	At         time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Event{}, ErrEventCodeExists
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByCode(ctx context.Context, code string) (Event, error) {
	var event Event
	err := d.db.WithContext(ctx).Where("code = ?", code).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, ErrEventNotFound
	}

	return event, err
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	var event Event
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, ErrEventNotFound
	}

	return event, err
}

func (d *EventDAO) FindByIDs(ctx context.Context, ids []string) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var events []Event
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error

	return events, err
}

// FindOpen lists events in one of states that have not ended, newest first.
func (d *EventDAO) FindOpen(ctx context.Context, states []string) ([]Event, error) {
	var events []Event
	err := d.db.WithContext(ctx).
		Where("state IN ?", withAliases(states)).
		Where("ended_at IS NULL").
		Order("created_at DESC").
		Find(&events).Error

	return events, err
}

// FindAll lists every event, newest first. An empty state means no filter.
func (d *EventDAO) FindAll(ctx context.Context, state string) ([]Event, error) {
	q := d.db.WithContext(ctx).Order("created_at DESC")
	if state != "" {
		q = q.Where("state IN ?", withAliases([]string{state}))
	}

	var events []Event
	err := q.Find(&events).Error

	return events, err
}

// UpdateState applies c only if the row is still in c.From.
// It reports false when another writer moved the event first.
func (d *EventDAO) UpdateState(ctx context.Context, c StateChange) (bool, error) {
	updates := map[string]any{
		"state":      c.To,
		"updated_at": c.At,
	}
	if c.StampStart {
		updates["started_at"] = gorm.Expr("COALESCE(started_at, ?)", c.At)
	}
	if c.StampEnd {
		updates["ended_at"] = gorm.Expr("COALESCE(ended_at, ?)", c.At)
	}

	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND state IN ?", c.EventID, withAliases([]string{c.From})).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// Rows written before the state machine was consolidated may still say "running".
func withAliases(states []string) []string {
	out := make([]string, 0, len(states)+1)
	for _, s := range states {
		out = append(out, s)
		if s == "live" {
			out = append(out, "running")
		}
	}

	return out
}
