package game

import (
	"time"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/geometry"
)

// shadow is the extrapolated local copy of a remote player, kept separate
// from the last authoritative sample so the opponent moves continuously
// between updates instead of teleporting on every poll.
type shadow struct {
	motion Motion
	player domain.Player // last authoritative record, for rendering metadata
}

// Predictor maintains one shadow per remote player and advances them with
// the same motion rules the local player uses.
type Predictor struct {
	shadows map[string]*shadow
}

func NewPredictor() *Predictor {
	return &Predictor{shadows: make(map[string]*shadow)}
}

// Sync folds a full authoritative player map into the shadow set. Direction
// changes are adopted immediately (they are the input events of this model);
// positions only hard-snap when divergence exceeds SnapDistance; a
// non-empty authoritative trail replaces the shadow's echo wholesale.
// Opponents that are dead or missing position data are dropped, and shadows
// for ids no longer present are torn down.
func (p *Predictor) Sync(players map[string]*domain.Player, selfID string) {
	for id, pl := range players {
		if id == selfID {
			continue
		}
		if !pl.IsAlive {
			delete(p.shadows, id)
			continue
		}
		p.Observe(pl)
	}
	for id := range p.shadows {
		if _, ok := players[id]; !ok {
			delete(p.shadows, id)
		}
	}
}

// Observe folds a full authoritative sample into the shadow set.
func (p *Predictor) Observe(pl *domain.Player) {
	sh, ok := p.shadows[pl.ID]
	if !ok {
		sh = &shadow{
			motion: Motion{
				Position:       pl.Position,
				Direction:      pl.Direction,
				Speed:          PlayerSpeed,
				Color:          pl.Color,
				TrailPoints:    append([]domain.Point(nil), pl.TrailPoints...),
				InOwnTerritory: pl.IsInOwnTerritory,
				DrawingTrail:   true,
			},
		}
		p.shadows[pl.ID] = sh
	} else {
		p.adoptHeading(sh, pl.Position, pl.Direction)
		if len(pl.TrailPoints) > 0 {
			sh.motion.TrailPoints = append([]domain.Point(nil), pl.TrailPoints...)
		}
		sh.motion.InOwnTerritory = pl.IsInOwnTerritory
	}
	sh.player = *pl
}

// ObserveHeading applies a pushed direction delta. Unlike Observe it merges
// into the existing record: the metadata and territory carried by the last
// full snapshot stay intact apart from what the delta names.
func (p *Predictor) ObserveHeading(playerID string, pos domain.Point, direction float64, inOwnTerritory bool) {
	sh, ok := p.shadows[playerID]
	if !ok {
		p.Observe(&domain.Player{
			ID:               playerID,
			Position:         pos,
			Direction:        direction,
			IsAlive:          true,
			IsInOwnTerritory: inOwnTerritory,
		})
		return
	}
	p.adoptHeading(sh, pos, direction)
	sh.motion.InOwnTerritory = inOwnTerritory
	sh.player.Position = pos
	sh.player.Direction = direction
	sh.player.IsInOwnTerritory = inOwnTerritory
}

// adoptHeading takes over a sampled direction when it differs beyond the
// noise floor, hard-snapping position only past SnapDistance.
func (p *Predictor) adoptHeading(sh *shadow, pos domain.Point, direction float64) {
	diff := geometry.NormalizeAngle(direction - sh.motion.Direction)
	if diff < -DirectionEpsilon || diff > DirectionEpsilon {
		sh.motion.Direction = direction
		if geometry.Distance(pos, sh.motion.Position) > SnapDistance {
			sh.motion.Position = pos
		}
	}
}

// ObserveTrail replaces a shadow's trail from a trail push event.
func (p *Predictor) ObserveTrail(playerID string, points []domain.Point) {
	if sh, ok := p.shadows[playerID]; ok {
		sh.motion.TrailPoints = append([]domain.Point(nil), points...)
	}
}

// ObserveClaim applies a territory-claim push event: the claimed area joins
// the shadow's territory and its trail resets, mirroring the remote claim.
func (p *Predictor) ObserveClaim(playerID string, area domain.Area) {
	if sh, ok := p.shadows[playerID]; ok {
		sh.motion.OccupiedAreas = append(sh.motion.OccupiedAreas, area)
		sh.motion.TrailPoints = nil
		sh.player.OccupiedAreas = append(sh.player.OccupiedAreas, area)
	}
}

// Remove tears down one shadow, releasing its state immediately instead of
// waiting for the next snapshot.
func (p *Predictor) Remove(playerID string) {
	delete(p.shadows, playerID)
}

// Advance extrapolates every shadow by dt seconds.
func (p *Predictor) Advance(now time.Time, dt float64) {
	for _, sh := range p.shadows {
		sh.motion.Extrapolate(now, dt)
	}
}

// Opponents returns the predicted view of every shadow for collision checks.
func (p *Predictor) Opponents() []Opponent {
	opps := make([]Opponent, 0, len(p.shadows))
	for id, sh := range p.shadows {
		opps = append(opps, Opponent{
			ID:             id,
			Alive:          sh.player.IsAlive,
			Position:       sh.motion.Position,
			TrailPoints:    sh.motion.TrailPoints,
			InOwnTerritory: sh.motion.InOwnTerritory,
		})
	}
	return opps
}

// Position returns a shadow's predicted position.
func (p *Predictor) Position(playerID string) (domain.Point, bool) {
	sh, ok := p.shadows[playerID]
	if !ok {
		return domain.Point{}, false
	}
	return sh.motion.Position, true
}

// Len reports the number of live shadows.
func (p *Predictor) Len() int {
	return len(p.shadows)
}
