package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	LeaderboardMaxLimit = 50
	AnonymousLabel      = "anonymous"
)

// RankedResult is a result joined with the run owner, the input of RankResults.
type RankedResult struct {
	Result
	UserID string
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	RunID       string    `json:"run_id"`
	UserID      string    `json:"user_id"`
	Participant string    `json:"participant"`
	Score       float64   `json:"score"`
	PnL         *float64  `json:"pnl"`
	Sharpe      *float64  `json:"sharpe"`
	MaxDrawdown *float64  `json:"max_drawdown"`
	WinRate     *float64  `json:"win_rate"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LeaderboardLimit clamps a requested size to (0, LeaderboardMaxLimit].
func LeaderboardLimit(limit int) int {
	if limit <= 0 || limit > LeaderboardMaxLimit {
		return LeaderboardMaxLimit
	}

	return limit
}

// RankResults orders results by score desc, pnl desc (missing pnl last),
// submission time asc and run id asc, then keeps the first limit.
func RankResults(results []RankedResult, limit int) []RankedResult {
	sorted := make([]RankedResult, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if cmp := comparePnL(a.PnL, b.PnL); cmp != 0 {
			return cmp > 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}

		return a.RunID < b.RunID
	})

	limit = LeaderboardLimit(limit)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

func comparePnL(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a > *b:
		return 1
	case *a < *b:
		return -1
	default:
		return 0
	}
}

// MaskEmail keeps the first two characters of the local part (one if it is two characters or fewer).
// Anything that does not look like an address becomes AnonymousLabel.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return AnonymousLabel
	}

	local, domain := email[:at], email[at+1:]

	keep := 2
	if n := utf8.RuneCountInString(local); n <= 2 {
		keep = 1
	}

	runes := []rune(local)

	return string(runes[:keep]) + "***@" + domain
}

// ParticipantLabel is what the leaderboard shows for a run owner.
func ParticipantLabel(p *Profile) string {
	if p == nil {
		return AnonymousLabel
	}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}

	return MaskEmail(p.Email)
}
