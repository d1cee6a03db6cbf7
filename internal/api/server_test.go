package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintsim/arena-api/internal/api"
	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/notify"
	"github.com/mintsim/arena-api/internal/pkg/jwthelper"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

const (
	signingKey = "server-test-key"
	linkSecret = "server-test-link-secret"
	adminEmail = "ops@example.com"
)

type testServer struct {
	t      *testing.T
	server *api.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			Port:               "0",
			BaseURL:            "localhost",
			AllowedCORSDomains: []string{"http://localhost:3000"},
		},
		Gin: &config.GinConfig{Mode: "test"},
		Log: &config.LogConfig{Level: "error"},
		Auth: &config.AuthConfig{
			JWTSigningKey:       signingKey,
			AdminLinkSecret:     linkSecret,
			AdminEmailAllowlist: []string{adminEmail},
		},
		Database: &config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Events:   &config.EventsConfig{InitialState: "active", DefaultDurationMinutes: 60},
		Sim:      &config.SimConfig{AdminPath: "/admin.html"},
		Kafka:    &config.KafkaConfig{},
	}

	return &testServer{
		t:      t,
		server: api.NewServer(conf, gdb, metrics.Nop(), notify.Nop{}),
	}
}

func token(t *testing.T, userID, email string) string {
	t.Helper()

	tok, err := jwthelper.GenerateToken([]byte(signingKey), userID, email, time.Hour)
	require.NoError(t, err)

	return tok
}

func (s *testServer) do(method, path, bearer string, body any) (int, map[string]any) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}

	return rec.Code, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = s.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	event := map[string]any{"code": "SPRING", "name": "Spring", "scenario_id": "s1", "sim_url": "https://sim.example.com"}

	code, _ := s.do(http.MethodPost, "/api/admin/events", "", event)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.do(http.MethodPost, "/api/admin/events", token(t, "u-1", "someone@example.com"), event)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["error"])

	code, body = s.do(http.MethodGet, "/api/admin/me", token(t, "u-1", "someone@example.com"), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["is_admin"])

	code, body = s.do(http.MethodGet, "/api/admin/me", token(t, "admin-1", adminEmail), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["is_admin"])
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin-1", adminEmail)

	code, body := s.do(http.MethodPost, "/api/admin/events", admin, map[string]any{
		"code": "bad code", "name": "x", "scenario_id": "s1", "sim_url": "ftp://nope",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_failed", body["error"])

	good := map[string]any{"code": "SPRING", "name": "Spring", "scenario_id": "s1", "sim_url": "https://sim.example.com"}
	code, _ = s.do(http.MethodPost, "/api/admin/events", admin, good)
	require.Equal(t, http.StatusCreated, code)

	code, body = s.do(http.MethodPost, "/api/admin/events", admin, good)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", body["error"])
}

func TestCompetitionFlow(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin-1", adminEmail)
	alice := token(t, "alice", "alice@example.com")
	bob := token(t, "bob", "bob@example.com")

	code, body := s.do(http.MethodPost, "/api/admin/events", admin, map[string]any{
		"code": "CUP-1", "name": "Cup", "scenario_id": "s1", "sim_url": "https://sim.example.com/play",
	})
	require.Equal(t, http.StatusCreated, code)
	event := body["event"].(map[string]any)
	assert.Equal(t, "active", event["state"])
	assert.EqualValues(t, 60, event["duration_minutes"])

	code, body = s.do(http.MethodGet, "/api/events/public", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["events"], 1)

	code, body = s.do(http.MethodPost, "/api/runs/create", alice, map[string]any{"event_code": "CUP-1"})
	require.Equal(t, http.StatusCreated, code)
	runID := body["run_id"].(string)
	assert.Equal(t, "https://sim.example.com/play?run_id="+runID, body["sim_url"])

	// results are only accepted once the event is live
	code, body = s.do(http.MethodPost, "/api/runs/submit", alice, map[string]any{"run_id": runID, "score": 10.5})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["message"], "current: active")

	code, body = s.do(http.MethodPost, "/api/admin/events/CUP-1/start", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "live", body["event"].(map[string]any)["state"])

	code, _ = s.do(http.MethodPost, "/api/runs/submit", bob, map[string]any{"run_id": runID, "score": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/runs/submit", alice, map[string]any{"run_id": runID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodPost, "/api/runs/submit", alice, map[string]any{"run_id": runID, "score": 10.5, "pnl": 3.2})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["ok"])

	code, _ = s.do(http.MethodPost, "/api/runs/submit", alice, map[string]any{"run_id": runID, "score": 99})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(http.MethodGet, "/api/events/CUP-1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, code)
	entries := body["leaderboard"].([]any)
	require.Len(t, entries, 1)
	first := entries[0].(map[string]any)
	assert.EqualValues(t, 1, first["rank"])
	assert.Equal(t, 10.5, first["score"])
	assert.Equal(t, "al***@example.com", first["participant"])

	code, body = s.do(http.MethodGet, "/api/runs/history", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["runs"], 1)

	code, _ = s.do(http.MethodGet, "/api/runs/"+runID, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/api/runs/"+runID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, body["result"])

	code, _ = s.do(http.MethodPost, "/api/admin/events/CUP-1/state", admin, map[string]any{"action": "end"})
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodPost, "/api/admin/events/CUP-1/end", admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ended", body["event"].(map[string]any)["state"])

	code, _ = s.do(http.MethodPost, "/api/admin/events/CUP-1/resume", admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(http.MethodGet, "/api/events/public", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["events"])
}

func TestAdminLinkFlow(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "admin-1", adminEmail)

	for _, c := range []string{"CUP-A", "CUP-B"} {
		code, _ := s.do(http.MethodPost, "/api/admin/events", admin, map[string]any{
			"code": c, "name": c, "scenario_id": "s1", "sim_url": "https://sim.example.com/",
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, body := s.do(http.MethodGet, "/api/admin/events/CUP-A/sim-admin-link", admin, nil)
	require.Equal(t, http.StatusOK, code)
	adminToken := body["admin_token"].(string)
	assert.True(t, strings.HasPrefix(body["admin_url"].(string), "https://sim.example.com/admin.html?"))

	validate := func(eventCode, tok string) (int, map[string]any) {
		q := url.Values{}
		q.Set("event_code", eventCode)
		q.Set("admin_token", tok)
		return s.do(http.MethodGet, "/api/admin/validate-token?"+q.Encode(), "", nil)
	}

	code, body = validate("CUP-A", adminToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "admin-1", body["admin_user_id"])

	code, body = validate("CUP-B", adminToken)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token_event_mismatch", body["error"])

	code, body = validate("CUP-A", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token_invalid", body["error"])

	code, _ = s.do(http.MethodPost, "/api/admin/sim-admin-link", admin, map[string]any{"event_code": "NOPE"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/admin/events/CUP-B/end", admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodPost, "/api/admin/sim-admin-link", admin, map[string]any{"event_code": "CUP-B"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["message"], "current: ended")
}

func TestUnknownEvent(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/api/events/MISSING", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])

	code, _ = s.do(http.MethodGet, "/api/events/MISSING/leaderboard", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
