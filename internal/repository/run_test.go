package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"

	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

func setupRunRepository(t *testing.T) (*repository.RunRepository, *dao.RunDAO, dao.Run) {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	event, err := dao.NewEventDAO(gdb).Insert(context.Background(), dao.Event{
		Code:       "E1",
		Name:       "Event",
		SimType:    "portfolio",
		ScenarioID: "scn-1",
		SimURL:     "https://sim.example.com",
		State:      "live",
	})
	require.NoError(t, err)

	runDAO := dao.NewRunDAO(gdb)
	run, err := runDAO.Insert(context.Background(), dao.Run{EventID: event.ID, UserID: "user-1"})
	require.NoError(t, err)

	return repository.NewRunRepository(runDAO), runDAO, run
}

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	return logs
}

func TestRunRepository_SaveResult_RoundTripsExtra(t *testing.T) {
	repo, _, run := setupRunRepository(t)

	_, err := repo.SaveResult(context.Background(), domain.Result{
		RunID:     run.ID,
		Score:     7,
		Extra:     map[string]any{"trades": float64(12)},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	got, err := repo.FindResult(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]any{"trades": float64(12)}, got.Extra)
}

func TestRunRepository_FindResult_MalformedExtraIsLogged(t *testing.T) {
	repo, runDAO, run := setupRunRepository(t)
	logs := observeWarnings(t)

	_, err := runDAO.InsertResultAndFinish(context.Background(), dao.RunResult{
		RunID:     run.ID,
		Score:     3,
		Extra:     datatypes.JSON(`{"trades":`),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	got, err := repo.FindResult(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, float64(3), got.Score)
	assert.Nil(t, got.Extra)

	warnings := logs.FilterMessage("dropping malformed result extra").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, run.ID, warnings[0].ContextMap()["run_id"])
}

func TestRunRepository_FindResult_Missing(t *testing.T) {
	repo, _, run := setupRunRepository(t)

	got, err := repo.FindResult(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
