package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

func TestLeaderboardService_Rank(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	require.NoError(t, f.profiles.Save(ctx, dao.Profile{ID: "alice", Email: "alice@example.com"}))
	require.NoError(t, f.profiles.Save(ctx, dao.Profile{ID: "bob", Email: "bob@example.com", DisplayName: "Bobby"}))

	runA, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)
	runB, err := f.runs.CreateRun(ctx, "E1", user("bob"))
	require.NoError(t, err)
	runC, err := f.runs.CreateRun(ctx, "E1", user("carol"))
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: runA.RunID, Score: 100, PnL: float(5)})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.runs.SubmitResult(ctx, user("bob"), domain.Submission{RunID: runB.RunID, Score: 100, PnL: float(9)})
	require.NoError(t, err)
	_, err = f.runs.SubmitResult(ctx, user("carol"), domain.Submission{RunID: runC.RunID, Score: 90, PnL: float(50)})
	require.NoError(t, err)

	entries, err := f.leaderboard.Rank(ctx, "E1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, runB.RunID, entries[0].RunID)
	assert.Equal(t, runA.RunID, entries[1].RunID)
	assert.Equal(t, runC.RunID, entries[2].RunID)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[2].Rank)

	assert.Equal(t, "Bobby", entries[0].Participant)
	assert.Equal(t, "al***@example.com", entries[1].Participant)
	assert.Equal(t, domain.AnonymousLabel, entries[2].Participant)

	top, err := f.leaderboard.Rank(ctx, "E1", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, runB.RunID, top[0].RunID)
}

func TestLeaderboardService_Rank_Empty(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")

	entries, err := f.leaderboard.Rank(context.Background(), "E1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.leaderboard.Rank(context.Background(), "MISSING", 0)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
