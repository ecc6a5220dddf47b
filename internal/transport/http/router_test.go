package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
)

type stubSnapshots map[string]game.Snapshot

func (s stubSnapshots) GetSnapshot(ctx context.Context, sessionID string) (game.Snapshot, bool, error) {
	snap, ok := s[sessionID]
	return snap, ok, nil
}

type stubMatches struct {
	records []game.MatchRecord
	limit   int
	err     error
}

func (s *stubMatches) ListRecent(ctx context.Context, limit int) ([]game.MatchRecord, error) {
	s.limit = limit
	return s.records, s.err
}

func newTestRouter(sm *game.SessionManager, snaps SnapshotReader, matches MatchLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Sessions: NewSessionHandler(sm, snaps),
		Matches:  NewMatchHandler(matches),
	})
}

func get(t *testing.T, r http.Handler, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func newManager() *game.SessionManager {
	return game.NewSessionManager(game.Options{Strategist: bot.NewStrategist(rand.New(rand.NewSource(1)))})
}

func TestHealthz(t *testing.T) {
	sm := newManager()
	sm.CreateSession()
	r := NewRouter(RouterConfig{
		Sessions:    NewSessionHandler(sm, nil),
		Matches:     NewMatchHandler(nil),
		Connections: func() int { return 3 },
	})

	var body map[string]any
	assert.Equal(t, http.StatusOK, get(t, r, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
	assert.EqualValues(t, 3, body["connections"])

	body = nil
	assert.Equal(t, http.StatusOK, get(t, newTestRouter(newManager(), nil, nil), "/healthz", &body))
	assert.NotContains(t, body, "connections")
}

func TestSessionsRoutes(t *testing.T) {
	sm := newManager()
	s := sm.CreateSession()
	require.NoError(t, s.StartGame(domain.PlayerVsPlayer, domain.Red, ""))

	cached := game.Snapshot{SessionID: "gone", Status: turn.Status{State: turn.StateTerminal, Moves: 9}}
	r := newTestRouter(sm, stubSnapshots{"gone": cached}, nil)

	var list []game.SessionSummary
	assert.Equal(t, http.StatusOK, get(t, r, "/api/sessions", &list))
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].SessionID)
	assert.Equal(t, domain.Red, list[0].Current)

	var live game.Snapshot
	assert.Equal(t, http.StatusOK, get(t, r, "/api/sessions/"+s.ID, &live))
	assert.Equal(t, turn.StateAwaitingMove, live.State)

	var fromCache game.Snapshot
	assert.Equal(t, http.StatusOK, get(t, r, "/api/sessions/gone", &fromCache))
	assert.Equal(t, 9, fromCache.Moves)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/api/sessions/missing", nil))
}

func TestMatchesRoute(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newTestRouter(newManager(), nil, nil), "/api/matches", nil))

	stub := &stubMatches{records: []game.MatchRecord{{ID: "m1", Moves: 7, Winner: domain.Blue}}}
	r := newTestRouter(newManager(), nil, stub)

	var matches []game.MatchRecord
	assert.Equal(t, http.StatusOK, get(t, r, "/api/matches?limit=5", &matches))
	assert.Equal(t, 5, stub.limit)
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/matches?limit=ten", nil))

	stub.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, get(t, r, "/api/matches", nil))
}

func TestEmptyMatchListIsArray(t *testing.T) {
	r := newTestRouter(newManager(), nil, &stubMatches{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/matches", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
