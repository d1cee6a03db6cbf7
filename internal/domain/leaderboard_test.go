package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestRankResults(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	results := []RankedResult{
		{Result: Result{RunID: "runA", Score: 100, PnL: ptr(5), CreatedAt: t0}},
		{Result: Result{RunID: "runB", Score: 100, PnL: ptr(9), CreatedAt: t0.Add(time.Minute)}},
		{Result: Result{RunID: "runC", Score: 90, PnL: ptr(50), CreatedAt: t0}},
	}

	ranked := RankResults(results, 10)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"runB", "runA", "runC"}, ids)
}

func TestRankResults_TieBreaks(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	results := []RankedResult{
		{Result: Result{RunID: "no-pnl", Score: 10, CreatedAt: t0}},
		{Result: Result{RunID: "negative", Score: 10, PnL: ptr(-3), CreatedAt: t0}},
		{Result: Result{RunID: "late", Score: 10, PnL: ptr(1), CreatedAt: t0.Add(time.Second)}},
		{Result: Result{RunID: "b-early", Score: 10, PnL: ptr(1), CreatedAt: t0}},
		{Result: Result{RunID: "a-early", Score: 10, PnL: ptr(1), CreatedAt: t0}},
	}

	ranked := RankResults(results, 0)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"a-early", "b-early", "late", "negative", "no-pnl"}, ids)
}

func TestRankResults_Limit(t *testing.T) {
	results := make([]RankedResult, 80)
	for i := range results {
		results[i] = RankedResult{Result: Result{RunID: time.Duration(i).String(), Score: float64(i)}}
	}

	assert.Len(t, RankResults(results, 0), LeaderboardMaxLimit)
	assert.Len(t, RankResults(results, 500), LeaderboardMaxLimit)
	assert.Len(t, RankResults(results, 3), 3)
	assert.Equal(t, float64(79), RankResults(results, 3)[0].Score)
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"alice@example.com": "al***@example.com",
		"al@example.com":    "a***@example.com",
		"a@example.com":     "a***@example.com",
		"":                  AnonymousLabel,
		"not-an-email":      AnonymousLabel,
		"@example.com":      AnonymousLabel,
		"alice@":            AnonymousLabel,
	}

	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestParticipantLabel(t *testing.T) {
	assert.Equal(t, AnonymousLabel, ParticipantLabel(nil))
	assert.Equal(t, "Trader Joe", ParticipantLabel(&Profile{DisplayName: "Trader Joe", Email: "joe@example.com"}))
	assert.Equal(t, "jo***@example.com", ParticipantLabel(&Profile{Email: "joe@example.com"}))
	assert.Equal(t, AnonymousLabel, ParticipantLabel(&Profile{}))
}
