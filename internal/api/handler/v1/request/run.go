package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateRunRequest struct {
	EventCode string `json:"event_code"`
}

func (req *CreateRunRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventCode, validation.Required),
	)
}

type SubmitResultRequest struct {
	RunID       string         `json:"run_id"`
	Score       *float64       `json:"score"`
	PnL         *float64       `json:"pnl"`
	Sharpe      *float64       `json:"sharpe"`
	MaxDrawdown *float64       `json:"max_drawdown"`
	WinRate     *float64       `json:"win_rate"`
	Extra       map[string]any `json:"extra"`
}

func (req *SubmitResultRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RunID, validation.Required),
		validation.Field(&req.Score, validation.NotNil),
	)
}
