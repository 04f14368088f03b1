package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/storage"
)

func newTestRouter() (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc := NewService(storage.NewMemory(), &fakePush{})
	svc.sleep = func(time.Duration) {}
	handler := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api")
	handler.Register(api)
	handler.RegisterDebug(api)
	return r, svc
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateHandler(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, http.MethodPost, "/api/game/create", struct{}{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		GameID    string            `json:"gameId"`
		GameState *domain.GameState `json:"gameState"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.GameID)
	assert.Equal(t, domain.StatusWaiting, resp.GameState.Status)
}

func TestJoinHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"valid", map[string]string{"username": "alice"}, http.StatusOK},
		{"missing username", map[string]string{}, http.StatusBadRequest},
		{"malformed json", "not json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter()
			w := doJSON(r, http.MethodPost, "/api/game/join", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestJoinHandlerFull(t *testing.T) {
	r, _ := newTestRouter()

	for _, name := range []string{"alice", "bob"} {
		w := doJSON(r, http.MethodPost, "/api/game/join", map[string]string{"username": name})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(r, http.MethodPost, "/api/game/join", map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "full")
}

func joinPlayer(t *testing.T, r *gin.Engine, username string) (gameID, playerID string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/game/join", map[string]string{"username": username})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		PlayerID string `json:"playerId"`
		GameID   string `json:"gameId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.GameID, resp.PlayerID
}

func TestUpdateHandlers(t *testing.T) {
	r, _ := newTestRouter()
	gameID, playerID := joinPlayer(t, r, "alice")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{
			name: "update player",
			path: "/api/game/update-player",
			body: map[string]any{
				"gameId":    gameID,
				"playerId":  playerID,
				"position":  map[string]float64{"x": 500, "y": 320},
				"direction": 0.75,
			},
		},
		{
			name: "update direction",
			path: "/api/game/update-direction",
			body: map[string]any{
				"gameId":    gameID,
				"playerId":  playerID,
				"direction": 1.5,
				"position":  map[string]float64{"x": 500, "y": 320},
			},
		},
		{
			name: "update trail",
			path: "/api/game/update-trail",
			body: map[string]any{
				"gameId":      gameID,
				"playerId":    playerID,
				"trailPoints": []map[string]float64{{"x": 500, "y": 320}},
			},
		},
		{
			name: "claim territory",
			path: "/api/game/claim-territory",
			body: map[string]any{
				"gameId":   gameID,
				"playerId": playerID,
				"occupiedArea": map[string]any{
					"points": []map[string]float64{{"x": 0, "y": 0}, {"x": 10, "y": 0}, {"x": 10, "y": 10}},
					"color":  0xff4500,
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"success":true`)
		})
	}
}

func TestUpdatePlayerPersistsDirection(t *testing.T) {
	r, svc := newTestRouter()
	gameID, playerID := joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/game/update-player", map[string]any{
		"gameId":    gameID,
		"playerId":  playerID,
		"position":  map[string]float64{"x": 510, "y": 310},
		"direction": 2.25,
	})
	require.Equal(t, http.StatusOK, w.Code)

	state, err := svc.State(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 2.25, state.Players[playerID].Direction)
}

func TestUpdateHandlerUnknownPlayer(t *testing.T) {
	r, _ := newTestRouter()
	gameID, _ := joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/game/update-player", map[string]any{
		"gameId":   gameID,
		"playerId": "player_missing",
		"position": map[string]float64{"x": 1, "y": 2},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateHandler(t *testing.T) {
	r, _ := newTestRouter()
	gameID, playerID := joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodGet, "/api/game/state/"+gameID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		GameState *domain.GameState `json:"gameState"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.GameState.Players, playerID)

	w = doJSON(r, http.MethodGet, "/api/game/state/game_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaveHandler(t *testing.T) {
	r, _ := newTestRouter()
	gameID, playerID := joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/game/leave", map[string]string{
		"gameId":   gameID,
		"playerId": playerID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success          bool   `json:"success"`
		PlayersRemaining int    `json:"playersRemaining"`
		GameStatus       string `json:"gameStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Zero(t, resp.PlayersRemaining)
	assert.Equal(t, string(domain.StatusFinished), resp.GameStatus)
}

func TestLeaveHandlerUnknownGame(t *testing.T) {
	r, _ := newTestRouter()
	joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/game/leave", map[string]string{
		"gameId":   "game_missing",
		"playerId": "player_missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCoverageHandler(t *testing.T) {
	r, _ := newTestRouter()
	gameID, playerID := joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodGet, "/api/game/coverage/"+gameID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), playerID)
}

func TestUsernameHandlers(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, http.MethodGet, "/api/username/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":false`)

	w = doJSON(r, http.MethodPost, "/api/username", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/username/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":true`)
}

func TestDebugHandlers(t *testing.T) {
	r, _ := newTestRouter()
	joinPlayer(t, r, "alice")

	w := doJSON(r, http.MethodGet, "/api/debug/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "current_game")

	w = doJSON(r, http.MethodPost, "/api/debug/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/debug/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", w.Body.String())
}

func TestTwoPlayerFlow(t *testing.T) {
	r, svc := newTestRouter()
	gameID, aliceID := joinPlayer(t, r, "alice")
	_, bobID := joinPlayer(t, r, "bob")

	state, err := svc.State(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaying, state.Status)

	w := doJSON(r, http.MethodPost, "/api/game/leave", map[string]string{
		"gameId":   gameID,
		"playerId": bobID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"playersRemaining":%d`, 1))

	state, err = svc.State(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, state.Status)
	assert.Contains(t, state.Players, aliceID)
}
