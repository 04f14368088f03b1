// Package session owns the single shared game session: matchmaking into it,
// persisting client-reported state, and expiring stale records. All state
// lives in the key/value store so any server instance can serve any request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/game"
	"github.com/Zeeyeah/subsurfempire/geometry"
	"github.com/Zeeyeah/subsurfempire/realtime"
	"github.com/Zeeyeah/subsurfempire/storage"
)

const (
	sessionKey        = "current_game"
	usernameKeyPrefix = "player:"

	maxSessionAge    = 30 * time.Minute
	emptyGraceWindow = 10 * time.Second

	joinRetries    = 3
	joinRetryDelay = 50 * time.Millisecond
)

// errNoSession is internal to the join retry loop.
var errNoSession = errors.New("no session yet")

// Spawn placement. The first player lands near the field center; the second
// lands near the first so the match starts in contact range, clamped so its
// seed territory stays well inside the field.
const (
	firstSpawnMinDist  = 20.0
	firstSpawnMaxDist  = 50.0
	secondSpawnMinDist = 60.0
	secondSpawnMaxDist = 120.0
)

// Broadcaster pushes best-effort events to connected clients.
type Broadcaster interface {
	Broadcast(realtime.Envelope)
}

// Service implements the session operations on top of the store. The store
// has no transactions, so every mutation re-reads the record first and Join,
// the only contended write, retries on load failures.
type Service struct {
	store storage.Store
	push  Broadcaster
	now   func() time.Time
	randf func() float64
	sleep func(time.Duration)
}

func NewService(store storage.Store, push Broadcaster) *Service {
	return &Service{
		store: store,
		push:  push,
		now:   time.Now,
		randf: rand.Float64,
		sleep: time.Sleep,
	}
}

// JoinParams carries the join request. Position and Direction are optional
// client-chosen overrides; when nil the service picks the spawn.
type JoinParams struct {
	Username  string
	Subreddit string
	Position  *domain.Point
	Direction *float64
}

// LeaveResult reports the session after a departure.
type LeaveResult struct {
	PlayersRemaining int
	Status           domain.GameStatus
}

func (s *Service) loadSession(ctx context.Context) (*domain.GameState, error) {
	raw, ok, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var state domain.GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	if state.Players == nil {
		state.Players = make(map[string]*domain.Player)
	}
	return &state, nil
}

func (s *Service) saveSession(ctx context.Context, state *domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return s.store.Set(ctx, sessionKey, string(raw))
}

// sweepStale deletes the session when it has outlived maxSessionAge, or when
// it has been empty longer than the grace window.
func (s *Service) sweepStale(ctx context.Context) error {
	state, err := s.loadSession(ctx)
	if err != nil || state == nil {
		return err
	}
	age := s.now().Sub(time.UnixMilli(state.CreatedAt))
	if age > maxSessionAge || (len(state.Players) == 0 && age > emptyGraceWindow) {
		log.Info().Str("game_id", state.GameID).Dur("age", age).Msg("sweeping stale session")
		return s.store.Delete(ctx, sessionKey)
	}
	return nil
}

func (s *Service) newSession() *domain.GameState {
	return &domain.GameState{
		GameID:     "game_" + uuid.NewString(),
		Players:    make(map[string]*domain.Player),
		Status:     domain.StatusWaiting,
		MaxPlayers: domain.MaxPlayers,
		CreatedAt:  s.now().UnixMilli(),
	}
}

// CreateOrGetWaiting returns the current session, creating a fresh waiting
// one when none exists or the existing one is stale.
func (s *Service) CreateOrGetWaiting(ctx context.Context) (*domain.GameState, error) {
	if err := s.sweepStale(ctx); err != nil {
		return nil, err
	}
	state, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = s.newSession()
		if err := s.saveSession(ctx, state); err != nil {
			return nil, err
		}
		log.Info().Str("game_id", state.GameID).Msg("created session")
	}
	return state.Clone(), nil
}

// Join adds a player to the shared session, creating it if needed. The
// record is re-read immediately before the mutation to shrink the window for
// a concurrent join to be overwritten; a second joiner landing on a full
// session gets ErrGameFull.
func (s *Service) Join(ctx context.Context, params JoinParams) (string, *domain.GameState, error) {
	if strings.TrimSpace(params.Username) == "" {
		return "", nil, domain.ErrInvalidUsername
	}
	if err := s.sweepStale(ctx); err != nil {
		return "", nil, err
	}

	// No session yet may mean a concurrent joiner is about to write one.
	// Retrying before minting a fresh session keeps two simultaneous
	// joiners from each creating their own and never meeting.
	var lastErr error
	for attempt := 0; attempt < joinRetries; attempt++ {
		if attempt > 0 {
			s.sleep(joinRetryDelay)
		}
		playerID, state, err := s.joinOnce(ctx, params, false)
		if err == nil {
			return s.announceJoin(playerID, state)
		}
		if errors.Is(err, domain.ErrGameFull) || errors.Is(err, domain.ErrInvalidUsername) {
			return "", nil, err
		}
		lastErr = err
	}
	if errors.Is(lastErr, errNoSession) {
		playerID, state, err := s.joinOnce(ctx, params, true)
		if err != nil {
			return "", nil, err
		}
		return s.announceJoin(playerID, state)
	}
	return "", nil, lastErr
}

func (s *Service) announceJoin(playerID string, state *domain.GameState) (string, *domain.GameState, error) {
	s.push.Broadcast(realtime.Envelope{
		Type:      realtime.TypeGameState,
		GameID:    state.GameID,
		GameState: state,
	})
	return playerID, state, nil
}

func (s *Service) joinOnce(ctx context.Context, params JoinParams, createIfMissing bool) (string, *domain.GameState, error) {
	state, err := s.loadSession(ctx)
	if err != nil {
		return "", nil, err
	}
	if state == nil {
		if !createIfMissing {
			return "", nil, errNoSession
		}
		state = s.newSession()
	}

	if len(state.Players) >= state.MaxPlayers {
		return "", nil, domain.ErrGameFull
	}

	pos, dir := s.spawn(state, params)
	color := game.ColorPrimary
	if len(state.Players) > 0 {
		color = game.ColorSecondary
	}

	playerID := "player_" + uuid.NewString()
	now := s.now().UnixMilli()
	state.Players[playerID] = &domain.Player{
		ID:               playerID,
		Username:         params.Username,
		Subreddit:        params.Subreddit,
		Position:         pos,
		Direction:        dir,
		Color:            color,
		IsAlive:          true,
		OccupiedAreas:    []domain.Area{game.SeedTerritory(pos, color)},
		IsInOwnTerritory: true,
		LastUpdate:       now,
	}
	if len(state.Players) >= state.MaxPlayers {
		state.Status = domain.StatusPlaying
	}

	if err := s.saveSession(ctx, state); err != nil {
		return "", nil, err
	}
	log.Info().
		Str("game_id", state.GameID).
		Str("player_id", playerID).
		Str("username", params.Username).
		Str("status", string(state.Status)).
		Msg("player joined")
	return playerID, state.Clone(), nil
}

// spawn picks a position and heading for the joining player. Explicit
// client overrides win; otherwise the first player spawns near the center
// and the second near the first.
func (s *Service) spawn(state *domain.GameState, params JoinParams) (domain.Point, float64) {
	if params.Position != nil {
		dir := s.randf() * 2 * math.Pi
		if params.Direction != nil {
			dir = *params.Direction
		}
		return *params.Position, dir
	}

	center := domain.Point{X: game.FieldCenterX, Y: game.FieldCenterY}
	angle := s.randf() * 2 * math.Pi
	var pos domain.Point
	if len(state.Players) == 0 {
		dist := firstSpawnMinDist + s.randf()*(firstSpawnMaxDist-firstSpawnMinDist)
		pos = domain.Point{
			X: center.X + math.Cos(angle)*dist,
			Y: center.Y + math.Sin(angle)*dist,
		}
	} else {
		var first domain.Point
		for _, p := range state.Players {
			first = p.Position
			break
		}
		dist := secondSpawnMinDist + s.randf()*(secondSpawnMaxDist-secondSpawnMinDist)
		pos = domain.Point{
			X: first.X + math.Cos(angle)*dist,
			Y: first.Y + math.Sin(angle)*dist,
		}
		if d := geometry.Distance(pos, center); d > game.SpawnRadius {
			radial := geometry.AngleTo(center, pos)
			pos.X = center.X + math.Cos(radial)*game.SpawnRadius
			pos.Y = center.Y + math.Sin(radial)*game.SpawnRadius
		}
	}

	dir := s.randf() * 2 * math.Pi
	if params.Direction != nil {
		dir = *params.Direction
	}
	return pos, dir
}

// mutatePlayer loads the session, applies fn to one player, and saves.
func (s *Service) mutatePlayer(ctx context.Context, gameID, playerID string, fn func(*domain.Player)) (*domain.GameState, error) {
	state, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || state.GameID != gameID {
		return nil, domain.ErrGameNotFound
	}
	player, ok := state.Players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	fn(player)
	player.LastUpdate = s.now().UnixMilli()
	if err := s.saveSession(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// UpdatePlayer persists a position/heading sample. Position is a high-rate
// channel served by polling, so no push message is emitted.
func (s *Service) UpdatePlayer(ctx context.Context, gameID, playerID string, pos domain.Point, direction float64, inOwnTerritory bool) error {
	_, err := s.mutatePlayer(ctx, gameID, playerID, func(p *domain.Player) {
		p.Position = pos
		p.Direction = direction
		p.IsInOwnTerritory = inOwnTerritory
	})
	return err
}

// UpdateDirection persists a heading change and pushes it, since direction
// changes are the input events remote predictors steer by.
func (s *Service) UpdateDirection(ctx context.Context, gameID, playerID string, direction float64, pos domain.Point) error {
	state, err := s.mutatePlayer(ctx, gameID, playerID, func(p *domain.Player) {
		p.Direction = direction
		p.Position = pos
	})
	if err != nil {
		return err
	}
	s.push.Broadcast(realtime.Envelope{
		Type:     realtime.TypePlayerUpdate,
		GameID:   gameID,
		PlayerID: playerID,
		PlayerUpdate: &realtime.PlayerUpdate{
			PlayerID:         playerID,
			Position:         pos,
			Direction:        direction,
			IsInOwnTerritory: state.Players[playerID].IsInOwnTerritory,
			Timestamp:        s.now().UnixMilli(),
		},
	})
	return nil
}

// UpdateTrail replaces the player's trail wholesale. Trails travel by
// polling only.
func (s *Service) UpdateTrail(ctx context.Context, gameID, playerID string, trail []domain.Point) error {
	_, err := s.mutatePlayer(ctx, gameID, playerID, func(p *domain.Player) {
		p.TrailPoints = trail
	})
	return err
}

// ClaimTerritory appends a claimed area to the player, clears the trail
// that produced it, and pushes the claim.
func (s *Service) ClaimTerritory(ctx context.Context, gameID, playerID string, area domain.Area) error {
	_, err := s.mutatePlayer(ctx, gameID, playerID, func(p *domain.Player) {
		p.OccupiedAreas = append(p.OccupiedAreas, area)
		p.TrailPoints = nil
		p.IsInOwnTerritory = true
	})
	if err != nil {
		return err
	}
	s.push.Broadcast(realtime.Envelope{
		Type:     realtime.TypeTerritoryClaim,
		GameID:   gameID,
		PlayerID: playerID,
		TerritoryClaim: &realtime.TerritoryClaim{
			PlayerID:  playerID,
			Area:      area,
			Timestamp: s.now().UnixMilli(),
		},
	})
	return nil
}

// Leave removes a player. An empty session is deleted, a half-empty one
// drops back to waiting so the next joiner restarts the match. A stale or
// unknown gameId is an error; leaving twice under a live gameId is not.
func (s *Service) Leave(ctx context.Context, gameID, playerID string) (LeaveResult, error) {
	state, err := s.loadSession(ctx)
	if err != nil {
		return LeaveResult{}, err
	}
	if state == nil || state.GameID != gameID {
		return LeaveResult{}, domain.ErrGameNotFound
	}
	if _, ok := state.Players[playerID]; !ok {
		return LeaveResult{PlayersRemaining: len(state.Players), Status: state.Status}, nil
	}
	delete(state.Players, playerID)

	if len(state.Players) == 0 {
		if err := s.store.Delete(ctx, sessionKey); err != nil {
			return LeaveResult{}, err
		}
		log.Info().Str("game_id", gameID).Msg("last player left, session deleted")
		return LeaveResult{PlayersRemaining: 0, Status: domain.StatusFinished}, nil
	}

	state.Status = domain.StatusWaiting
	if err := s.saveSession(ctx, state); err != nil {
		return LeaveResult{}, err
	}
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Msg("player left")
	s.push.Broadcast(realtime.Envelope{
		Type:     realtime.TypePlayerRemoved,
		GameID:   gameID,
		PlayerID: playerID,
	})
	s.push.Broadcast(realtime.Envelope{
		Type:      realtime.TypeGameState,
		GameID:    gameID,
		GameState: state.Clone(),
	})
	return LeaveResult{PlayersRemaining: len(state.Players), Status: state.Status}, nil
}

// State returns the session snapshot clients poll.
func (s *Service) State(ctx context.Context, gameID string) (*domain.GameState, error) {
	state, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || state.GameID != gameID {
		return nil, domain.ErrGameNotFound
	}
	return state.Clone(), nil
}

// Coverage returns the leaderboard for the current session.
func (s *Service) Coverage(ctx context.Context, gameID string) ([]game.CoverageEntry, error) {
	state, err := s.State(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.Coverage(state.Players), nil
}

type profile struct {
	Username string `json:"username"`
	LastSeen int64  `json:"lastSeen"`
}

// SetUsername records a visitor profile under its own key.
func (s *Service) SetUsername(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return domain.ErrInvalidUsername
	}
	raw, err := json.Marshal(profile{Username: username, LastSeen: s.now().UnixMilli()})
	if err != nil {
		return err
	}
	return s.store.Set(ctx, usernameKeyPrefix+username, string(raw))
}

// Username reports whether a visitor profile exists.
func (s *Service) Username(ctx context.Context, username string) (bool, error) {
	_, ok, err := s.store.Get(ctx, usernameKeyPrefix+username)
	return ok, err
}

// DebugState dumps every stored key for inspection.
func (s *Service) DebugState(ctx context.Context) (map[string]string, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := s.store.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// Reset wipes every stored key.
func (s *Service) Reset(ctx context.Context) error {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	log.Warn().Int("keys", len(keys)).Msg("store reset")
	return nil
}
