package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironmc/gridiron/jobs"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/nfl/nfltest"
	"github.com/gridironmc/gridiron/overrides"
)

func testServer(t *testing.T) (*Server, *nfl.Schedule) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	lg := nfltest.League()
	sched := nfltest.Schedule(lg, 2025)
	ovr := overrides.NewStore(t.TempDir(), zerolog.Nop())
	jm := jobs.NewManager(lg, zerolog.Nop())
	return NewServer(lg, sched, ovr, jm, zerolog.Nop()), sched
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestGetStatus(t *testing.T) {
	srv, sched := testServer(t)
	w := do(t, srv, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, len(sched.Games), body["games"])
	assert.EqualValues(t, 32, body["teams"])
}

func TestGetTeams(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, http.MethodGet, "/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	teams := decode[[]nfl.Team](t, w)
	assert.Len(t, teams, 32)
}

func TestGetScheduleByWeek(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, http.MethodGet, "/schedule?week=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	games := decode[[]nfl.Game](t, w)
	assert.Len(t, games, 16)
	for _, g := range games {
		assert.Equal(t, 1, g.Week)
	}

	w = do(t, srv, http.MethodGet, "/schedule?week=99", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStandings(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, http.MethodGet, "/standings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	assert.Len(t, rows, 32)
}

func TestPostSimulateValidation(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, http.MethodPost, "/simulate", map[string]any{"num_simulations": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "num_simulations", body["field"])
}

func TestPostSimulateRuns(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, http.MethodPost, "/simulate",
		map[string]any{"num_simulations": 5, "random_seed": 3})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 5, body["num_simulations"])
	stats, ok := body["team_stats"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, stats, 32)
}

func TestOverrideFlow(t *testing.T) {
	srv, sched := testServer(t)
	gameID := sched.Games[0].ID
	homeID := sched.Games[0].HomeTeamID

	// Unknown game.
	w := do(t, srv, http.MethodPost, "/override",
		map[string]any{"game_id": "bogus", "home_score": 1, "away_score": 0, "is_overridden": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Negative score.
	w = do(t, srv, http.MethodPost, "/override",
		map[string]any{"game_id": gameID, "home_score": -1, "away_score": 0, "is_overridden": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing scores.
	w = do(t, srv, http.MethodPost, "/override",
		map[string]any{"game_id": gameID, "is_overridden": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid override: the home team now shows a win in the standings.
	w = do(t, srv, http.MethodPost, "/override",
		map[string]any{"game_id": gameID, "home_score": 30, "away_score": 7, "is_overridden": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["ok"])

	w = do(t, srv, http.MethodGet, "/standings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	require.Equal(t, homeID, rows[0]["team_id"])
	assert.EqualValues(t, 1, rows[0]["wins"])

	// Clearing restores the untouched schedule.
	w = do(t, srv, http.MethodPost, "/override",
		map[string]any{"game_id": gameID, "is_overridden": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodGet, "/standings", nil)
	rows = decode[[]map[string]any](t, w)
	assert.EqualValues(t, 0, rows[0]["wins"])
}

func TestJobLifecycle(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, http.MethodPost, "/simulation-jobs",
		map[string]any{"num_simulations": 50, "random_seed": 9})
	require.Equal(t, http.StatusOK, w.Code)
	job := decode[jobs.Job](t, w)
	assert.Equal(t, jobs.StatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)

	final := pollJob(t, srv, job.ID)
	assert.Equal(t, jobs.StatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, 50, final.Result.NumSimulations)
}

func TestJobSingleFlightConflict(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, http.MethodPost, "/simulation-jobs",
		map[string]any{"num_simulations": 1000000})
	require.Equal(t, http.StatusOK, w.Code)
	job := decode[jobs.Job](t, w)

	w = do(t, srv, http.MethodPost, "/simulation-jobs",
		map[string]any{"num_simulations": 10})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodDelete, "/simulation-jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	final := pollJob(t, srv, job.ID)
	assert.Equal(t, jobs.StatusCancelled, final.Status)
	assert.Nil(t, final.Result)
}

func TestJobNotFound(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, http.MethodGet, "/simulation-jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodDelete, "/simulation-jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func pollJob(t *testing.T, srv *Server, id string) jobs.Job {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		w := do(t, srv, http.MethodGet, "/simulation-jobs/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		job := decode[jobs.Job](t, w)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", id)
	return jobs.Job{}
}
