package domain

import "time"

type Run struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Result is the single final outcome of a run.
type Result struct {
	RunID       string         `json:"run_id"`
	Score       float64        `json:"score"`
	PnL         *float64       `json:"pnl"`
	Sharpe      *float64       `json:"sharpe"`
	MaxDrawdown *float64       `json:"max_drawdown"`
	WinRate     *float64       `json:"win_rate"`
	Extra       map[string]any `json:"extra,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Submission is what a participant sends when a run finishes.
type Submission struct {
	RunID       string
	Score       float64
	PnL         *float64
	Sharpe      *float64
	MaxDrawdown *float64
	WinRate     *float64
	Extra       map[string]any
}

func (s Submission) Result(now time.Time) Result {
	return Result{
		RunID:       s.RunID,
		Score:       s.Score,
		PnL:         s.PnL,
		Sharpe:      s.Sharpe,
		MaxDrawdown: s.MaxDrawdown,
		WinRate:     s.WinRate,
		Extra:       s.Extra,
		CreatedAt:   now,
	}
}

// RunLaunch is handed back to a participant after a run is created.
type RunLaunch struct {
	RunID  string `json:"run_id"`
	SimURL string `json:"sim_url"`
}

type RunDetail struct {
	Run    Run     `json:"run"`
	Event  Event   `json:"event"`
	Result *Result `json:"result"`
}

type RunHistoryEntry struct {
	Run       Run     `json:"run"`
	EventCode string  `json:"event_code"`
	EventName string  `json:"event_name"`
	Result    *Result `json:"result"`
}
