package request

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	eventCodeExp = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	httpURLExp   = regexp.MustCompile(`^https?://`)

	errInvalidEventCode = errors.New("must contain only uppercase letters, digits, '_' or '-'")
	errInvalidSimURL    = errors.New("must be an http(s) URL")
	errInvalidDuration  = errors.New("duration_minutes must be a positive integer")
)

type CreateEventRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	ScenarioID      string `json:"scenario_id"`
	SimURL          string `json:"sim_url"`
	DurationMinutes *int   `json:"duration_minutes"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 64), validation.Match(eventCodeExp).Error(errInvalidEventCode.Error())),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.ScenarioID, validation.Required),
		validation.Field(&req.SimURL, validation.Required, is.RequestURL, validation.Match(httpURLExp).Error(errInvalidSimURL.Error())),
	)
	if err != nil {
		return err
	}

	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return errInvalidDuration
	}

	return nil
}

type TransitionRequest struct {
	Action string `json:"action"`
}

func (req *TransitionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Action, validation.Required, validation.In("start", "pause", "resume", "end")),
	)
}

type ListEventsQuery struct {
	State string `form:"state"`
}

type LeaderboardQuery struct {
	Limit int `form:"limit"`
}

type AdminLinkRequest struct {
	EventCode string `json:"event_code"`
}

func (req *AdminLinkRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventCode, validation.Required),
	)
}

type ValidateTokenQuery struct {
	EventCode  string `form:"event_code"`
	AdminToken string `form:"admin_token"`
}

func (req *ValidateTokenQuery) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventCode, validation.Required),
		validation.Field(&req.AdminToken, validation.Required),
	)
}
