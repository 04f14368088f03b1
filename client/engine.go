package client

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/game"
	"github.com/Zeeyeah/subsurfempire/geometry"
	"github.com/Zeeyeah/subsurfempire/realtime"
)

const (
	tickInterval = 50 * time.Millisecond

	// Heading changes below the threshold or inside the interval are absorbed
	// locally; remote predictors extrapolate through them.
	directionSendThreshold = 0.05
	directionSendInterval  = 50 * time.Millisecond

	steerInterval = 2 * time.Second
	homingRadius  = game.FieldRadius * 0.5
)

// Engine runs a headless player: it joins the shared session, simulates
// motion locally, syncs through the API, predicts the opponent, and leaves
// when eliminated. It is both the load-test bot and the reference consumer
// of the client stack.
type Engine struct {
	api    *Client
	source *Source

	gameID   string
	playerID string
	motion   *game.Motion
	pred     *game.Predictor
	detector *game.Detector

	target        game.Target
	lastSteer     time.Time
	lastSentDir   float64
	lastDirSentAt time.Time
	randf         func() float64
}

// NewEngine joins the session and prepares the simulation state.
func NewEngine(ctx context.Context, api *Client, baseURL, username string, randf func() float64) (*Engine, error) {
	res, err := api.Join(ctx, username, "")
	if err != nil {
		return nil, err
	}
	self := res.GameState.Players[res.PlayerID]
	motion := game.NewMotion(self.Position, self.Direction, self.Color)

	e := &Engine{
		api:         api,
		source:      NewSource(api, baseURL, res.GameID),
		gameID:      res.GameID,
		playerID:    res.PlayerID,
		motion:      motion,
		pred:        game.NewPredictor(),
		detector:    game.NewDetector(time.Now()),
		lastSentDir: self.Direction,
		randf:       randf,
	}
	e.pred.Sync(res.GameState.Players, res.PlayerID)
	log.Info().
		Str("game_id", e.gameID).
		Str("player_id", e.playerID).
		Str("username", username).
		Msg("joined session")
	return e, nil
}

// Run drives the simulation loop until elimination or ctx cancellation.
// It always attempts to leave the session on the way out.
func (e *Engine) Run(ctx context.Context) error {
	go e.source.Run(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer e.leave()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			e.drainUpdates()
			e.pred.Advance(now, dt)
			if done := e.tick(ctx, now, dt); done {
				return nil
			}
		}
	}
}

func (e *Engine) drainUpdates() {
	for {
		select {
		case env := <-e.source.Updates():
			e.apply(env)
		default:
			return
		}
	}
}

func (e *Engine) apply(env realtime.Envelope) {
	switch env.Type {
	case realtime.TypeGameState:
		if env.GameState != nil {
			e.pred.Sync(env.GameState.Players, e.playerID)
		}
	case realtime.TypePlayerUpdate:
		if env.PlayerUpdate != nil && env.PlayerUpdate.PlayerID != e.playerID {
			e.pred.ObserveHeading(
				env.PlayerUpdate.PlayerID,
				env.PlayerUpdate.Position,
				env.PlayerUpdate.Direction,
				env.PlayerUpdate.IsInOwnTerritory,
			)
		}
	case realtime.TypeTrailUpdate:
		if env.TrailUpdate != nil && env.TrailUpdate.PlayerID != e.playerID {
			e.pred.ObserveTrail(env.TrailUpdate.PlayerID, env.TrailUpdate.TrailPoints)
		}
	case realtime.TypeTerritoryClaim:
		if env.TerritoryClaim != nil && env.TerritoryClaim.PlayerID != e.playerID {
			e.pred.ObserveClaim(env.TerritoryClaim.PlayerID, env.TerritoryClaim.Area)
		}
	case realtime.TypePlayerRemoved:
		if env.PlayerID != "" && env.PlayerID != e.playerID {
			e.pred.Remove(env.PlayerID)
		}
	}
}

func (e *Engine) tick(ctx context.Context, now time.Time, dt float64) (done bool) {
	e.steer(now)
	res := e.motion.Step(now, dt, e.target)

	if res.Eliminated {
		log.Info().Str("player_id", e.playerID).Msg("hit own trail, eliminated")
		return true
	}
	if hit := e.detector.Check(now, e.motion, e.pred.Opponents()); hit != nil {
		log.Info().
			Str("player_id", e.playerID).
			Str("opponent_id", hit.OpponentID).
			Bool("trail_hit", hit.Kind == game.HitTrail).
			Msg("collision, eliminated")
		return true
	}

	if res.Claimed != nil {
		if err := e.api.ClaimTerritory(ctx, e.gameID, e.playerID, *res.Claimed); err != nil {
			log.Warn().Err(err).Msg("claim sync failed")
		}
	} else if res.TrailAppended {
		if err := e.api.UpdateTrail(ctx, e.gameID, e.playerID, e.motion.TrailPoints); err != nil {
			log.Debug().Err(err).Msg("trail sync failed")
		}
	}

	e.syncDirection(ctx, now)
	if _, err := e.api.UpdatePlayer(ctx, e.gameID, e.playerID, e.motion.Position, e.motion.Direction, e.motion.InOwnTerritory); err != nil {
		log.Debug().Err(err).Msg("position sync failed")
	}
	return false
}

// steer picks a fresh wander heading on an interval, homing back toward the
// center once the player strays past half the field radius.
func (e *Engine) steer(now time.Time) {
	if now.Sub(e.lastSteer) < steerInterval {
		return
	}
	e.lastSteer = now

	center := domain.Point{X: game.FieldCenterX, Y: game.FieldCenterY}
	if geometry.Distance(e.motion.Position, center) > homingRadius {
		e.target = game.Target{Angle: geometry.AngleTo(e.motion.Position, center), Active: true}
		return
	}
	e.target = game.Target{Angle: e.randf()*2*math.Pi - math.Pi, Active: true}
}

func (e *Engine) syncDirection(ctx context.Context, now time.Time) {
	diff := geometry.NormalizeAngle(e.motion.Direction - e.lastSentDir)
	if math.Abs(diff) < directionSendThreshold || now.Sub(e.lastDirSentAt) < directionSendInterval {
		return
	}
	if err := e.api.UpdateDirection(ctx, e.gameID, e.playerID, e.motion.Direction, e.motion.Position); err != nil {
		log.Debug().Err(err).Msg("direction sync failed")
		return
	}
	e.lastSentDir = e.motion.Direction
	e.lastDirSentAt = now
}

func (e *Engine) leave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := e.api.Leave(ctx, e.gameID, e.playerID); err != nil {
		log.Warn().Err(err).Msg("leave failed")
	}
}
