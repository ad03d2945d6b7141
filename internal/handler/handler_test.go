package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/handler"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/repository/memory"
	"github.com/maxviazov/football-manager-sim/internal/service"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// stubSimulator returns canned values and records the last events request.
type stubSimulator struct {
	err     error
	lastReq service.EventsRequest
	init    service.InitOptions
}

func (s *stubSimulator) InitWorld(_ context.Context, opts service.InitOptions) (service.WorldInfo, error) {
	s.init = opts
	return service.WorldInfo{ID: "world-1"}, s.err
}

func (s *stubSimulator) AdvanceMatchday(_ context.Context, leagueID string) (service.MatchdayReport, error) {
	return service.MatchdayReport{LeagueID: leagueID}, s.err
}

func (s *stubSimulator) Standings(context.Context, string) ([]model.StandingRow, error) {
	return []model.StandingRow{{Position: 1, TeamID: "t1"}}, s.err
}

func (s *stubSimulator) Team(_ context.Context, id string) (model.Team, error) {
	return model.Team{ID: id}, s.err
}

func (s *stubSimulator) Events(_ context.Context, req service.EventsRequest) (repository.EventPage, error) {
	s.lastReq = req
	return repository.EventPage{LastSequence: req.AfterSequence}, s.err
}

func (s *stubSimulator) LatestSequence(context.Context) (int64, error) { return 42, s.err }

func newEngine(p handler.Pinger, sim service.Simulator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, p, sim)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newEngine(stubPinger{}, &stubSimulator{})
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, handler.APIV1Prefix+"/health/ready", nil).Code)

	r = newEngine(stubPinger{err: errors.New("db down")}, &stubSimulator{})
	w := do(t, r, http.MethodGet, handler.APIV1Prefix+"/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "db down")

	r = newEngine(nil, &stubSimulator{})
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", nil).Code)
}

func TestDocs(t *testing.T) {
	r := newEngine(nil, &stubSimulator{})
	w := do(t, r, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/leagues/{league_id}/matchdays")
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/docs", nil).Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		code   int
	}{
		{"no world", service.ErrNoWorld, http.MethodPost, "/leagues/lg-1/matchdays", http.StatusConflict},
		{"unknown league", fmt.Errorf("%w: league %q", model.ErrInvalidReference, "x"), http.MethodGet, "/leagues/x/standings", http.StatusNotFound},
		{"unknown team", fmt.Errorf("%w: team %q", model.ErrInvalidReference, "x"), http.MethodGet, "/teams/x", http.StatusNotFound},
		{"season complete", service.ErrSeasonComplete, http.MethodPost, "/leagues/lg-1/matchdays", http.StatusConflict},
		{"store down", errors.New("boom"), http.MethodGet, "/events/latest", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(nil, &stubSimulator{err: tc.err})
			w := do(t, r, tc.method, handler.APIV1Prefix+tc.path, nil)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestEvents_QueryParsing(t *testing.T) {
	sim := &stubSimulator{}
	r := newEngine(nil, sim)

	w := do(t, r, http.MethodGet, handler.APIV1Prefix+"/events?after=7&limit=20&types=goal,red_card&types=injury", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.EventsRequest{AfterSequence: 7, Limit: 20, Types: []string{"goal", "red_card", "injury"}}, sim.lastReq)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["next_after_sequence"], "empty page keeps the cursor")

	w = do(t, r, http.MethodGet, handler.APIV1Prefix+"/events?after=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, handler.APIV1Prefix+"/events?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitWorld_Body(t *testing.T) {
	sim := &stubSimulator{}
	r := newEngine(nil, sim)

	w := do(t, r, http.MethodPost, handler.APIV1Prefix+"/world", map[string]any{
		"seed": 99, "leagues": 2, "teams_per_league": 6, "start": "2025-08-16T15:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(99), sim.init.Seed)
	assert.Equal(t, 2, sim.init.Leagues)
	assert.Equal(t, 6, sim.init.TeamsPerLeague)
	assert.True(t, sim.init.Start.Equal(time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)))

	w = do(t, r, http.MethodPost, handler.APIV1Prefix+"/world", nil)
	assert.Equal(t, http.StatusCreated, w.Code, "empty body uses defaults")

	req := httptest.NewRequest(http.MethodPost, handler.APIV1Prefix+"/world", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memory.New(zerolog.Nop())
	svc := service.NewWorldService(store, softstate.MockProvider{}, simulation.DefaultConfig(), softstate.DefaultMaxDelta, zerolog.Nop())
	cfg := config.Default().HTTP
	cfg.RateLimit = 0
	h := handler.NewRouter(cfg, store, svc, zerolog.Nop())

	w := do(t, h, http.MethodPost, handler.APIV1Prefix+"/leagues/lg-1/matchdays", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, handler.APIV1Prefix+"/world", map[string]any{"seed": 3, "teams_per_league": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info service.WorldInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 12, info.Matches)

	w = do(t, h, http.MethodPost, handler.APIV1Prefix+"/leagues/lg-1/matchdays", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report service.MatchdayReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Len(t, report.Results, 2)

	w = do(t, h, http.MethodGet, handler.APIV1Prefix+"/leagues/lg-1/standings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":1`)

	w = do(t, h, http.MethodGet, fmt.Sprintf("%s/events?after=%d&types=match_ended", handler.APIV1Prefix, info.Sequence), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Events []struct {
			Sequence int64  `json:"sequence"`
			Type     string `json:"type"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Events, 2)
	assert.Equal(t, "match_ended", page.Events[0].Type)

	w = do(t, h, http.MethodGet, handler.APIV1Prefix+"/events?types=touchdown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "field_errors")

	w = do(t, h, http.MethodGet, handler.APIV1Prefix+"/teams/lg-1-t01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"roster"`)
}

func TestEvents_CursorSkipsUnreadableRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recs := []event.Record{
		{Sequence: 1, ID: uuid.New(), Type: "transfer_completed", Timestamp: time.Now(), Payload: json.RawMessage(`{}`)},
		{Sequence: 2, ID: uuid.New(), Type: "transfer_completed", Timestamp: time.Now(), Payload: json.RawMessage(`{}`)},
	}
	store := memory.New(zerolog.Nop(), memory.WithRecords(recs))
	svc := service.NewWorldService(store, softstate.MockProvider{}, simulation.DefaultConfig(), softstate.DefaultMaxDelta, zerolog.Nop())
	r := newEngine(nil, svc)

	w := do(t, r, http.MethodGet, handler.APIV1Prefix+"/events?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Events  []json.RawMessage `json:"events"`
		Skipped int               `json:"skipped"`
		Next    int64             `json:"next_after_sequence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Events)
	assert.Equal(t, 2, body.Skipped)
	assert.Equal(t, int64(2), body.Next)
}

func TestRouter_CORS(t *testing.T) {
	cfg := config.HTTPConfig{AllowedOrigins: []string{"https://club.example"}}
	h := handler.NewRouter(cfg, nil, &stubSimulator{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "https://club.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://club.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler.RateLimit(1, 2))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"), "buckets are per client")
}
