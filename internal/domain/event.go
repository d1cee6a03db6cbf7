package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidState      = errors.New("invalid event state")
	ErrInvalidAction     = errors.New("invalid event action")
	ErrInvalidTransition = errors.New("invalid event transition")
)

const SimTypePortfolio = "portfolio"

type EventState string

const (
	StateDraft  EventState = "draft"
	StateActive EventState = "active"
	StateLive   EventState = "live"
	StatePaused EventState = "paused"
	StateEnded  EventState = "ended"

	// stateRunning is the name older rows use for live.
	stateRunning = "running"
)

// ParseState accepts the canonical state names plus the legacy "running".
func ParseState(s string) (EventState, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case string(StateDraft), string(StateActive), string(StateLive), string(StatePaused), string(StateEnded):
		return EventState(v), nil
	case stateRunning:
		return StateLive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

// Normalize folds legacy names into the canonical set. Unknown values are returned unchanged.
func (s EventState) Normalize() EventState {
	if parsed, err := ParseState(string(s)); err == nil {
		return parsed
	}

	return s
}

// Joinable reports whether new runs may be created against an event in this state.
func (s EventState) Joinable() bool {
	switch s.Normalize() {
	case StateActive, StateLive:
		return true
	default:
		return false
	}
}

// AcceptsResults reports whether runs of an event in this state may submit a result.
func (s EventState) AcceptsResults() bool {
	switch s.Normalize() {
	case StateLive, StateEnded:
		return true
	default:
		return false
	}
}

// AdminLinkAvailable reports whether an admin link may be issued in this state.
func (s EventState) AdminLinkAvailable() bool {
	return s.Joinable()
}

// PublicStates are listed on the public page as long as the event has not ended.
var PublicStates = []EventState{StateActive, StateLive, StatePaused}

type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionEnd    Action = "end"
)

func ParseAction(s string) (Action, error) {
	switch v := Action(strings.ToLower(strings.TrimSpace(s))); v {
	case ActionStart, ActionPause, ActionResume, ActionEnd:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

type Event struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	SimType         string     `json:"sim_type"`
	ScenarioID      string     `json:"scenario_id"`
	SimURL          string     `json:"sim_url"`
	DurationMinutes int        `json:"duration_minutes"`
	State           EventState `json:"state"`
	StartedAt       *time.Time `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Transition is the outcome of applying an Action to a state.
// A NoOp transition leaves the event untouched.
type Transition struct {
	From   EventState
	To     EventState
	Action Action
	NoOp   bool
}

// StampsStart reports whether the transition should record started_at (only if still unset).
func (t Transition) StampsStart() bool {
	return !t.NoOp && t.To == StateLive
}

// StampsEnd reports whether the transition should record ended_at (only if still unset).
func (t Transition) StampsEnd() bool {
	return !t.NoOp && t.To == StateEnded
}

// NextState is the event state machine.
//
//	draft/active: start, resume -> live; end -> ended; pause rejected
//	live:         pause -> paused; end -> ended; start, resume no-op
//	paused:       start, resume -> live; end -> ended; pause no-op
//	ended:        end no-op; everything else rejected
func NextState(current EventState, action Action) (Transition, error) {
	from := current.Normalize()
	t := Transition{From: from, To: from, Action: action}

	reject := func() (Transition, error) {
		return Transition{}, fmt.Errorf("%w: cannot %s an event that is %s", ErrInvalidTransition, action, from)
	}

	switch action {
	case ActionStart, ActionResume:
		switch from {
		case StateDraft, StateActive, StatePaused:
			t.To = StateLive
		case StateLive:
			t.NoOp = true
		default:
			return reject()
		}
	case ActionPause:
		switch from {
		case StateLive:
			t.To = StatePaused
		case StatePaused:
			t.NoOp = true
		default:
			return reject()
		}
	case ActionEnd:
		switch from {
		case StateDraft, StateActive, StateLive, StatePaused:
			t.To = StateEnded
		case StateEnded:
			t.NoOp = true
		default:
			return reject()
		}
	default:
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	return t, nil
}

// Apply returns e after t, as the store would persist it at now.
// started_at and ended_at are written once and never overwritten.
func (e Event) Apply(t Transition, now time.Time) Event {
	if t.NoOp {
		return e
	}

	e.State = t.To
	if t.StampsStart() && e.StartedAt == nil {
		e.StartedAt = &now
	}
	if t.StampsEnd() && e.EndedAt == nil {
		e.EndedAt = &now
	}
	e.UpdatedAt = now

	return e
}
