package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/hoopstats/internal/api"
	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/source"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

const (
	lebron = "2544"
	durant = "201142"
	curry  = "201939"
	kobe   = "977"
)

var testHTTPConfig = config.HTTPConfig{
	Host:           "127.0.0.1",
	Port:           8000,
	AllowedOrigins: []string{"http://localhost:8081"},
	RequestTimeout: 5 * time.Second,
}

func newTestRouter(t *testing.T, checks ...api.HealthCheck) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	mem, err := source.LoadDir("../../fixtures/players")
	require.NoError(t, err)
	h := api.NewHandler(compare.NewComparator(mem, logger), mem, mem, logger, checks...)
	return api.NewRouter(h, testHTTPConfig, logger)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	failing := api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}
	passing := api.HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	rec = get(t, newTestRouter(t, failing, passing), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body api.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"])
	assert.Equal(t, "ok", body.Checks["postgres"])
}

func TestPlayerStats(t *testing.T) {
	h := newTestRouter(t)

	rec := get(t, h, "/player-stats/"+lebron)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body stats.PlayerStatRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "LeBron James", body.Name)
	assert.Equal(t, stats.HeadshotURL(2544), body.Headshot)
	require.NotNil(t, body.Postseason)

	rec = get(t, h, "/player-stats/1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "player_not_found", decodeError(t, rec).Code)

	rec = get(t, h, "/player-stats/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestCompare_Career(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/compare", "/compare/"} {
		rec := get(t, h, path+"?mode_type=career&p1_id="+lebron+"&p2_id="+curry)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var res compare.Result
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, compare.Career(), res.Mode)
		assert.Equal(t, compare.Regular, res.SeasonType)
		assert.Equal(t, compare.PerGame, res.Basis)
		assert.InDelta(t, 4519.0/168, res.Player1Stats.Pts, 1e-9)
		assert.InDelta(t, 3751.0/132, res.Player2Stats.Pts, 1e-9)
		assert.InDelta(t, 4519.0/168-3751.0/132, res.Differential.Pts, 1e-9)
		assert.Equal(t, compare.Highlight{Player2: true}, res.Highlights["pts"])
		assert.Equal(t, compare.Highlight{Player1: true}, res.Highlights["gp"], "games played stays a total")
	}
}

func TestCompare_SeasonTotals(t *testing.T) {
	h := newTestRouter(t)
	rec := get(t, h, "/compare/?mode_type=season&season_name=2020-21&basis=total&p1_id="+lebron+"&p2_id="+durant)
	require.Equal(t, http.StatusOK, rec.Code)

	var res compare.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, compare.Season("2020-21"), res.Mode)
	assert.Equal(t, 1126.0-936.0, res.Differential.Pts)
	assert.Equal(t, compare.Highlight{Player1: true}, res.Highlights["pts"])
	assert.Equal(t, compare.Highlight{Player1: true}, res.Highlights["gp"])
}

func TestCompare_Postseason(t *testing.T) {
	h := newTestRouter(t)
	rec := get(t, h, "/compare?mode_type=season&season_name=2020-21&season_type=postseason&p1_id="+lebron+"&p2_id="+durant)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/compare?mode_type=career&season_type=postseason&p1_id="+curry+"&p2_id="+kobe)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "season_mismatch", decodeError(t, rec).Code)
}

func TestCompare_Errors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"season only one player has", "mode_type=season&season_name=2019-20&p1_id=" + lebron + "&p2_id=" + durant, http.StatusNotFound, "season_mismatch"},
		{"season neither player has", "mode_type=season&season_name=2010-11&p1_id=" + lebron + "&p2_id=" + curry, http.StatusNotFound, "season_not_found"},
		{"unknown player", "mode_type=career&p1_id=" + lebron + "&p2_id=12345", http.StatusNotFound, "player_not_found"},
		{"season without label", "mode_type=season&p1_id=" + lebron + "&p2_id=" + curry, http.StatusBadRequest, "bad_request"},
		{"unknown mode", "mode_type=decade&p1_id=" + lebron + "&p2_id=" + curry, http.StatusBadRequest, "bad_request"},
		{"missing p1", "mode_type=career&p2_id=" + curry, http.StatusBadRequest, "bad_request"},
		{"negative p2", "mode_type=career&p1_id=" + lebron + "&p2_id=-4", http.StatusBadRequest, "bad_request"},
		{"bad basis", "mode_type=career&basis=per36&p1_id=" + lebron + "&p2_id=" + curry, http.StatusBadRequest, "bad_request"},
		{"bad season type", "mode_type=career&season_type=playin&p1_id=" + lebron + "&p2_id=" + curry, http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, "/compare?"+tt.query)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, http.StatusText(tt.status), body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestCompare_InternalErrorHidesDetail(t *testing.T) {
	logger := zaptest.NewLogger(t)
	broken := compare.RecordSourceFunc(func(context.Context, int64) (*stats.PlayerStatRecord, error) {
		return nil, errors.New("dial tcp 10.0.0.1:5432: secret detail")
	})
	mem := source.NewMemory(nil)
	h := api.NewRouter(api.NewHandler(compare.NewComparator(broken, logger), broken, mem, logger), testHTTPConfig, logger)

	rec := get(t, h, "/compare?mode_type=career&p1_id=1&p2_id=2")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal", body.Code)
	assert.NotContains(t, body.Message, "secret")
}

func TestCompare_RequestDeadline(t *testing.T) {
	logger := zaptest.NewLogger(t)
	blocking := compare.RecordSourceFunc(func(ctx context.Context, _ int64) (*stats.PlayerStatRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	chain := source.NewChain(logger, source.Tier{Name: "upstream", Source: blocking})
	cfg := testHTTPConfig
	cfg.RequestTimeout = 50 * time.Millisecond
	h := api.NewRouter(api.NewHandler(compare.NewComparator(chain, logger), chain, source.NewMemory(nil), logger), cfg, logger)

	for _, target := range []string{"/compare?mode_type=career&p1_id=1&p2_id=2", "/player-stats/1"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code, target)
		body := decodeError(t, rec)
		assert.Equal(t, "timeout", body.Code, target)
	}
}

func TestSearchPlayers(t *testing.T) {
	h := newTestRouter(t)

	rec := get(t, h, "/search-player/lebron+james")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []stats.PlayerSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&players))
	require.Len(t, players, 1)
	assert.Equal(t, int64(2544), players[0].PlayerID)
	assert.True(t, players[0].Active)

	rec = get(t, h, "/search-player/Kobe%20Bryant")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&players))
	require.Len(t, players, 1)
	assert.False(t, players[0].Active)

	rec = get(t, h, "/search-player/zzz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = get(t, h, "/search-player/+")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchPlayers_Unavailable(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mem := source.NewMemory(nil)
	down := source.NewSearchChain(logger, searchFunc(func(context.Context, string) ([]stats.PlayerSummary, error) {
		return nil, errors.New("roster fetch failed")
	}))
	h := api.NewRouter(api.NewHandler(compare.NewComparator(mem, logger), mem, down, logger), testHTTPConfig, logger)

	rec := get(t, h, "/search-player/lebron")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

type searchFunc func(context.Context, string) ([]stats.PlayerSummary, error)

func (f searchFunc) SearchPlayers(ctx context.Context, q string) ([]stats.PlayerSummary, error) {
	return f(ctx, q)
}

func TestRouter_RequestIDAndNotFound(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_CORS(t *testing.T) {
	h := newTestRouter(t)

	preflight := func(origin, method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/compare", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", method)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://localhost:8081", http.MethodGet)
	assert.Equal(t, "http://localhost:8081", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight("http://localhost:8081", http.MethodPost)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "only GET is allowed")

	rec = preflight("https://evil.example", http.MethodGet)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:8081", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/compare", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
