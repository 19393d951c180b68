package api_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/idlecoins/internal/api/apierr"
	"github.com/mcoot/idlecoins/internal/api/response"
	"github.com/mcoot/idlecoins/internal/factory"
	"github.com/mcoot/idlecoins/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	require.NoError(t, app.Start(t.Context()))
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &testServer{
		handler: app.Handler(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) seed(t *testing.T, id string, money float64, age time.Duration) {
	t.Helper()
	p := model.NewPlayer(model.PlayerID(id), ts.app.MockClock.Now().Add(-age))
	p.Money = money
	require.NoError(t, ts.app.Storage.SavePlayer(t.Context(), p))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
}

func TestLeaderboardEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	board := decode[response.Leaderboard](t, rr)
	assert.Equal(t, model.TimeFilterAll, board.Time)
	assert.Empty(t, board.Entries)
}

func TestLeaderboardOrderAndLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "low", 10, 0)
	ts.seed(t, "high", 900, 0)
	ts.seed(t, "mid", 300, 0)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	board := decode[response.Leaderboard](t, rr)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, model.PlayerID("high"), board.Entries[0].ID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, model.PlayerID("mid"), board.Entries[1].ID)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.NotNil(t, board.Entries[0].Upgrades)
}

func TestLeaderboardTimeFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "veteran", 5000, 30*24*time.Hour)
	ts.seed(t, "thisweek", 50, 3*24*time.Hour)
	ts.seed(t, "today", 5, time.Hour)

	tests := []struct {
		window string
		want   []model.PlayerID
	}{
		{"all", []model.PlayerID{"veteran", "thisweek", "today"}},
		{"weekly", []model.PlayerID{"thisweek", "today"}},
		{"daily", []model.PlayerID{"today"}},
		{"bogus", []model.PlayerID{"veteran", "thisweek", "today"}},
	}
	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			rr := ts.request(http.MethodGet, "/api/v1/leaderboard?time="+tt.window, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var got []model.PlayerID
			for _, e := range decode[response.Leaderboard](t, rr).Entries {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeaderboardInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, limit := range []string{"0", "-3", "abc", "101"} {
		rr := ts.request(http.MethodGet, "/api/v1/leaderboard?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "limit=%s", limit)
		assert.Equal(t, apierr.CodeInvalidRequest, decode[apierr.ErrorResponse](t, rr).Error.Code)
	}
}

func TestRank(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "a", 100, 0)
	ts.seed(t, "b", 50, 0)

	rr := ts.request(http.MethodGet, "/api/v1/players/b/rank", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rank := decode[response.Rank](t, rr)
	assert.Equal(t, model.PlayerID("b"), rank.ID)
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, 2, rank.Total)
	assert.Equal(t, 50.0, rank.Money)
}

func TestRankUnknownPlayerRanksLast(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "a", 100, 0)

	rr := ts.request(http.MethodGet, "/api/v1/players/nobody/rank", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rank := decode[response.Rank](t, rr)
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, 1, rank.Total)
	assert.Zero(t, rank.Money)
}

func TestRankPrefersLiveState(t *testing.T) {
	ts := newTestServer(t)

	res, err := ts.app.Sessions.Connect(t.Context(), "live")
	require.NoError(t, err)
	for range 3 {
		_, err := ts.app.Sessions.Click(t.Context(), res.PlayerID)
		require.NoError(t, err)
	}

	rr := ts.request(http.MethodGet, "/api/v1/players/live/rank", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rank := decode[response.Rank](t, rr)
	assert.Equal(t, 3.0, rank.Money)
	assert.Equal(t, int64(3), rank.TotalClicks)
}

func TestRankInvalidID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/has%20space/rank", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.app.Sessions.Connect(t.Context(), "one")
	require.NoError(t, err)
	_, err = ts.app.Sessions.Connect(t.Context(), "two")
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	stats := decode[response.Stats](t, rr)
	assert.Equal(t, 2, stats.Online)
	assert.Equal(t, 2, stats.Cached)
	assert.Zero(t, stats.Clients)
}

func TestResponsesAreCompressedOnRequest(t *testing.T) {
	ts := newTestServer(t)
	for i := range 40 {
		ts.seed(t, "player-with-a-long-identifier-"+string(rune('a'+i%26))+string(rune('a'+i/26)), float64(i), 0)
	}

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard?limit=40", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var board response.Leaderboard
	require.NoError(t, json.Unmarshal(body, &board))
	assert.Len(t, board.Entries, 40)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/lobbies", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decode[apierr.ErrorResponse](t, rr).Error.Code)
}
