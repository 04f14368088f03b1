// Package client is the game-side counterpart of the server: an HTTP API
// client, the dual-channel state source (polling plus websocket push), and a
// headless engine that runs the full simulation loop against a server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/game"
)

// Position samples are throttled client-side so a 60 Hz loop does not turn
// into 60 requests per second. Skipped samples are not an error; the next
// allowed one supersedes them.
const positionSendInterval = 100 * time.Millisecond

// Client calls the game HTTP API.
type Client struct {
	base       string
	httpClient *http.Client
	posLimiter *rate.Limiter
}

func New(baseURL string) *Client {
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		posLimiter: rate.NewLimiter(rate.Every(positionSendInterval), 1),
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps wire errors back onto the domain sentinels so callers can use
// errors.Is across the network boundary.
func (e *apiError) Unwrap() error {
	switch {
	case strings.Contains(e.Message, domain.ErrGameFull.Error()):
		return domain.ErrGameFull
	case strings.Contains(e.Message, domain.ErrGameNotFound.Error()):
		return domain.ErrGameNotFound
	case strings.Contains(e.Message, domain.ErrPlayerNotFound.Error()):
		return domain.ErrPlayerNotFound
	default:
		return nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var fail struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&fail)
		return &apiError{Status: resp.StatusCode, Message: fail.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateResult is the create response.
type CreateResult struct {
	GameID    string            `json:"gameId"`
	GameState *domain.GameState `json:"gameState"`
}

func (c *Client) Create(ctx context.Context) (*CreateResult, error) {
	var out CreateResult
	if err := c.do(ctx, http.MethodPost, "/api/game/create", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinResult is the join response.
type JoinResult struct {
	PlayerID  string            `json:"playerId"`
	GameID    string            `json:"gameId"`
	GameState *domain.GameState `json:"gameState"`
}

func (c *Client) Join(ctx context.Context, username, subreddit string) (*JoinResult, error) {
	var out JoinResult
	body := map[string]string{"username": username, "subreddit": subreddit}
	if err := c.do(ctx, http.MethodPost, "/api/game/join", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlayer sends a position/heading sample, subject to the send
// throttle. It reports whether the sample was actually sent.
func (c *Client) UpdatePlayer(ctx context.Context, gameID, playerID string, pos domain.Point, direction float64, inOwnTerritory bool) (bool, error) {
	if !c.posLimiter.Allow() {
		return false, nil
	}
	body := map[string]any{
		"gameId":           gameID,
		"playerId":         playerID,
		"position":         pos,
		"direction":        direction,
		"isInOwnTerritory": inOwnTerritory,
	}
	if err := c.do(ctx, http.MethodPost, "/api/game/update-player", body, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) UpdateDirection(ctx context.Context, gameID, playerID string, direction float64, pos domain.Point) error {
	body := map[string]any{
		"gameId":    gameID,
		"playerId":  playerID,
		"direction": direction,
		"position":  pos,
	}
	return c.do(ctx, http.MethodPost, "/api/game/update-direction", body, nil)
}

func (c *Client) UpdateTrail(ctx context.Context, gameID, playerID string, trail []domain.Point) error {
	body := map[string]any{
		"gameId":      gameID,
		"playerId":    playerID,
		"trailPoints": trail,
	}
	return c.do(ctx, http.MethodPost, "/api/game/update-trail", body, nil)
}

func (c *Client) ClaimTerritory(ctx context.Context, gameID, playerID string, area domain.Area) error {
	body := map[string]any{
		"gameId":       gameID,
		"playerId":     playerID,
		"occupiedArea": area,
	}
	return c.do(ctx, http.MethodPost, "/api/game/claim-territory", body, nil)
}

// LeaveResult is the leave response.
type LeaveResult struct {
	PlayersRemaining int               `json:"playersRemaining"`
	GameStatus       domain.GameStatus `json:"gameStatus"`
}

func (c *Client) Leave(ctx context.Context, gameID, playerID string) (*LeaveResult, error) {
	body := map[string]string{"gameId": gameID, "playerId": playerID}
	var out LeaveResult
	if err := c.do(ctx, http.MethodPost, "/api/game/leave", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) State(ctx context.Context, gameID string) (*domain.GameState, error) {
	var out struct {
		GameState *domain.GameState `json:"gameState"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/game/state/"+gameID, nil, &out); err != nil {
		return nil, err
	}
	return out.GameState, nil
}

func (c *Client) Coverage(ctx context.Context, gameID string) ([]game.CoverageEntry, error) {
	var out struct {
		Coverage []game.CoverageEntry `json:"coverage"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/game/coverage/"+gameID, nil, &out); err != nil {
		return nil, err
	}
	return out.Coverage, nil
}
