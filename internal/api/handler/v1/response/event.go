package response

import "github.com/mintsim/arena-api/internal/domain"

type EventsResponse struct {
	Events []domain.Event `json:"events"`
}

type EventResponse struct {
	Event domain.Event `json:"event"`
}

type LeaderboardResponse struct {
	EventCode   string                    `json:"event_code"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type SubmitResultResponse struct {
	OK     bool          `json:"ok"`
	Result domain.Result `json:"result"`
}

type RunHistoryResponse struct {
	Runs []domain.RunHistoryEntry `json:"runs"`
}

type AdminMeResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

type ValidateTokenResponse struct {
	Valid       bool   `json:"valid"`
	EventCode   string `json:"event_code"`
	AdminUserID string `json:"admin_user_id"`
}
