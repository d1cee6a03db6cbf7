package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

func TestRunService_CreateRun(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	ctx := context.Background()

	alice := domain.Identity{UserID: "alice", Email: "alice@example.com", Verified: true}
	launch, err := f.runs.CreateRun(ctx, "E1", alice)
	require.NoError(t, err)
	assert.NotEmpty(t, launch.RunID)
	assert.Equal(t, "https://sim.example.com/play/?run_id="+launch.RunID, launch.SimURL)

	second, err := f.runs.CreateRun(ctx, "E1", alice)
	require.NoError(t, err)
	assert.NotEqual(t, launch.RunID, second.RunID, "several runs per user are allowed")

	profile, err := f.profiles.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestRunService_CreateRun_Gates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.runs.CreateRun(ctx, "MISSING", user("alice"))
	assert.ErrorIs(t, err, ErrEventNotFound)

	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	f.transition(t, "E1", domain.ActionPause)

	_, err = f.runs.CreateRun(ctx, "E1", user("alice"))
	assert.ErrorIs(t, err, ErrEventNotJoinable)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StatePaused, stateErr.State)
}

func TestWithRunID(t *testing.T) {
	assert.Equal(t, "https://sim/x?run_id=r1", withRunID("https://sim/x", "r1"))
	assert.Equal(t, "https://sim/x?mode=a&run_id=r1", withRunID("https://sim/x?mode=a", "r1"))
}

func TestRunService_SubmitResult_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 10})
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 20})
	assert.ErrorIs(t, err, ErrResultAlreadySubmitted)

	var count int64
	require.NoError(t, f.db.Model(&dao.RunResult{}).Where("run_id = ?", launch.RunID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	detail, err := f.runs.GetRunDetail(ctx, user("alice"), launch.RunID)
	require.NoError(t, err)
	require.NotNil(t, detail.Result)
	assert.Equal(t, float64(10), detail.Result.Score)
	assert.NotNil(t, detail.Run.FinishedAt)
}

func TestRunService_SubmitResult_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	const attempts = 6
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: float64(i)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrResultAlreadySubmitted)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, f.db.Model(&dao.RunResult{}).Where("run_id = ?", launch.RunID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunService_SubmitResult_WaitsForLive(t *testing.T) {
	f := newFixture(t)
	_, err := f.events.CreateEvent(context.Background(), domain.Event{Code: "E1", Name: "E1", ScenarioID: "s", SimURL: "https://sim"})
	require.NoError(t, err)
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 5})
	assert.ErrorIs(t, err, ErrResultNotAccepted)

	f.transition(t, "E1", domain.ActionStart)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 5})
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 5})
	assert.ErrorIs(t, err, ErrResultAlreadySubmitted)
}

func TestRunService_SubmitResult_AfterEnd(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	f.transition(t, "E1", domain.ActionEnd)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: launch.RunID, Score: 7})
	assert.NoError(t, err, "runs still in flight may report after the event ended")
}

func TestRunService_SubmitResult_Ownership(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("mallory"), domain.Submission{RunID: launch.RunID, Score: 1000})
	assert.ErrorIs(t, err, ErrForbidden)

	boss := domain.Identity{UserID: "boss", Email: "boss@example.com", Verified: true}
	_, err = f.runs.SubmitResult(ctx, boss, domain.Submission{RunID: launch.RunID, Score: 3})
	assert.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: "missing", Score: 3})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunService_GetRunDetail(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	ctx := context.Background()

	launch, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)

	detail, err := f.runs.GetRunDetail(ctx, user("alice"), launch.RunID)
	require.NoError(t, err)
	assert.Nil(t, detail.Result)
	assert.Equal(t, "E1", detail.Event.Code)

	_, err = f.runs.GetRunDetail(ctx, user("bob"), launch.RunID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.runs.GetRunDetail(ctx, user("alice"), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunService_GetHistory(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "E1")
	f.createEvent(t, "E2")
	f.transition(t, "E1", domain.ActionStart)
	ctx := context.Background()

	first, err := f.runs.CreateRun(ctx, "E1", user("alice"))
	require.NoError(t, err)
	_, err = f.runs.CreateRun(ctx, "E2", user("alice"))
	require.NoError(t, err)
	_, err = f.runs.CreateRun(ctx, "E2", user("bob"))
	require.NoError(t, err)

	_, err = f.runs.SubmitResult(ctx, user("alice"), domain.Submission{RunID: first.RunID, Score: 42, Extra: map[string]any{"trades": float64(3)}})
	require.NoError(t, err)

	history, err := f.runs.GetHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)

	byRun := map[string]domain.RunHistoryEntry{}
	for _, h := range history {
		byRun[h.Run.ID] = h
	}

	withResult := byRun[first.RunID]
	assert.Equal(t, "E1", withResult.EventCode)
	assert.Equal(t, "Event E1", withResult.EventName)
	require.NotNil(t, withResult.Result)
	assert.Equal(t, float64(42), withResult.Result.Score)
	assert.Equal(t, map[string]any{"trades": float64(3)}, withResult.Result.Extra)
}
