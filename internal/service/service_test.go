package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/repository"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

const (
	testSigningKey = "test-signing-key"
	testLinkSecret = "test-link-secret"
)

type recordingNotifier struct {
	mu    sync.Mutex
	ended []domain.Event
	done  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 16)}
}

func (n *recordingNotifier) EventEnded(_ context.Context, event domain.Event) error {
	n.mu.Lock()
	n.ended = append(n.ended, event)
	n.mu.Unlock()
	n.done <- struct{}{}

	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.ended)
}

type fixture struct {
	db          *gorm.DB
	events      *EventService
	runs        *RunService
	leaderboard *LeaderboardService
	adminLinks  *AdminLinkService
	admins      *AdminService
	identity    *IdentityService
	profiles    *dao.ProfileDAO
	notifier    *recordingNotifier
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	m := metrics.Nop()
	authConf := &config.AuthConfig{
		JWTSigningKey:       testSigningKey,
		AdminLinkSecret:     testLinkSecret,
		AdminEmailAllowlist: []string{"Boss@Example.com"},
	}

	profileDAO := dao.NewProfileDAO(gdb)
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(gdb))
	runRepo := repository.NewRunRepository(dao.NewRunDAO(gdb))
	profileRepo := repository.NewProfileRepository(profileDAO)

	f := &fixture{
		db:       gdb,
		profiles: profileDAO,
		notifier: newRecordingNotifier(),
		now:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.admins = NewAdminService(profileRepo, NewAdminAllowlist(authConf.AdminEmailAllowlist))
	f.identity = NewIdentityService(authConf, profileRepo)

	f.events = NewEventService(eventRepo, f.notifier, &config.EventsConfig{InitialState: "active", DefaultDurationMinutes: 60}, m)
	f.events.now = clock

	f.runs = NewRunService(runRepo, eventRepo, profileRepo, f.admins, m)
	f.runs.now = clock

	f.leaderboard = NewLeaderboardService(eventRepo, runRepo, profileRepo, m)

	f.adminLinks = NewAdminLinkService(eventRepo, authConf, &config.SimConfig{AdminPath: "/admin.html"}, m)
	f.adminLinks.now = clock

	return f
}

func (f *fixture) createEvent(t *testing.T, code string) domain.Event {
	t.Helper()

	event, err := f.events.CreateEvent(context.Background(), domain.Event{
		Code:       code,
		Name:       "Event " + code,
		ScenarioID: "scn-1",
		SimURL:     "https://sim.example.com/play/",
	})
	require.NoError(t, err)

	return event
}

func (f *fixture) transition(t *testing.T, code string, action domain.Action) domain.Event {
	t.Helper()

	event, err := f.events.Transition(context.Background(), code, action)
	require.NoError(t, err)

	return event
}

func user(id string) domain.Identity {
	return domain.Identity{UserID: id, Verified: true}
}

func float(v float64) *float64 { return &v }
