// Package game implements the client-side simulation: the per-tick motion
// and territory state machine, the collision detector, and the shadow
// predictor for remote players. The server never runs any of this; it only
// stores what clients report.
package game

import (
	"math"
	"time"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/geometry"
)

// Target is a requested facing angle, usually from directional input or a
// pointer aim. An inactive target leaves the current heading untouched.
type Target struct {
	Angle  float64
	Active bool
}

// StepResult reports what a single simulation step did beyond moving the
// player, so the caller can sync trail appends and claims to the server.
type StepResult struct {
	TrailAppended bool
	Claimed       *domain.Area
	Eliminated    bool
}

// Motion owns one player's position, heading, trail, and territory, and
// advances them each simulation tick.
type Motion struct {
	Position       domain.Point
	Direction      float64
	Speed          float64
	Color          int
	TrailPoints    []domain.Point
	OccupiedAreas  []domain.Area
	InOwnTerritory bool
	DrawingTrail   bool

	lastTrailAppend time.Time
}

// NewMotion creates a player state at pos with a seed territory around the
// spawn point, so there is something to leave and return to.
func NewMotion(pos domain.Point, direction float64, color int) *Motion {
	m := &Motion{
		Position:       pos,
		Direction:      direction,
		Speed:          PlayerSpeed,
		Color:          color,
		InOwnTerritory: true,
		DrawingTrail:   true,
	}
	m.OccupiedAreas = append(m.OccupiedAreas, SeedTerritory(pos, color))
	return m
}

// SeedTerritory builds the circular starting territory around a spawn point.
func SeedTerritory(center domain.Point, color int) domain.Area {
	points := make([]domain.Point, 0, SeedTerritorySegments)
	for i := 0; i < SeedTerritorySegments; i++ {
		angle := float64(i) / SeedTerritorySegments * 2 * math.Pi
		points = append(points, domain.Point{
			X: center.X + math.Cos(angle)*SeedTerritoryRadius,
			Y: center.Y + math.Sin(angle)*SeedTerritoryRadius,
		})
	}
	return domain.Area{Points: points, Color: color}
}

// Step advances the player by dt seconds: rotate toward the target, move,
// bounce off the field boundary, update territory status, and apply the
// trail rules (append, claim on loop closure, self-collision).
func (m *Motion) Step(now time.Time, dt float64, target Target) StepResult {
	var res StepResult

	if target.Active {
		diff := geometry.NormalizeAngle(target.Angle - m.Direction)
		if math.Abs(diff) > TurnDeadband {
			maxTurn := TurnSpeed * dt
			m.Direction += geometry.Clamp(diff, -maxTurn, maxTurn)
		}
	}

	m.advance(dt)
	m.InOwnTerritory = m.InTerritory(m.Position)

	if m.DrawingTrail && now.Sub(m.lastTrailAppend) > TrailInterval {
		m.lastTrailAppend = now
		if !m.InOwnTerritory {
			m.TrailPoints = append(m.TrailPoints, m.Position)
			res.TrailAppended = true
			if len(m.TrailPoints) > TrailMaxPoints {
				m.TrailPoints = m.TrailPoints[len(m.TrailPoints)-TrailMaxPoints:]
			}
		}

		if area, ok := m.closeLoop(); ok {
			res.Claimed = &area
		} else if m.hitOwnTrail() {
			res.Eliminated = true
		}
	}

	return res
}

// advance moves along the current heading and reflects off the circular
// boundary: heading flips toward the center and the position is clamped
// onto the inset boundary circle.
func (m *Motion) advance(dt float64) {
	m.Position.X += math.Cos(m.Direction) * m.Speed * dt
	m.Position.Y += math.Sin(m.Direction) * m.Speed * dt

	center := domain.Point{X: FieldCenterX, Y: FieldCenterY}
	if geometry.Distance(m.Position, center) > FieldRadius-BoundaryMargin {
		m.Direction = geometry.AngleTo(m.Position, center)
		radial := geometry.AngleTo(center, m.Position)
		m.Position.X = center.X + math.Cos(radial)*(FieldRadius-BoundaryMargin)
		m.Position.Y = center.Y + math.Sin(radial)*(FieldRadius-BoundaryMargin)
	}
}

// closeLoop converts the trail into a new owned polygon when the player is
// back inside its territory with a long enough trail. Trivial re-entries
// with a short trail do not claim.
func (m *Motion) closeLoop() (domain.Area, bool) {
	if !m.InOwnTerritory || len(m.TrailPoints) <= TrailClaimMin {
		return domain.Area{}, false
	}
	area := domain.Area{
		Points: append([]domain.Point(nil), m.TrailPoints...),
		Color:  m.Color,
	}
	m.OccupiedAreas = append(m.OccupiedAreas, area)
	m.TrailPoints = nil
	m.DrawingTrail = true
	return area, true
}

// hitOwnTrail tests the current position against the trail, excluding the
// newest points.
func (m *Motion) hitOwnTrail() bool {
	if m.InOwnTerritory || len(m.TrailPoints) < SelfCollisionMinTrail {
		return false
	}
	for i := 0; i < len(m.TrailPoints)-SelfCollisionSkipNewest; i++ {
		if geometry.Distance(m.Position, m.TrailPoints[i]) < SelfCollisionThreshold {
			return true
		}
	}
	return false
}

// Extrapolate advances the state without input, loop-closure, or collision
// checks. The predictor uses it to keep remote shadows moving between
// authoritative samples; territory status comes from the samples, not from
// a local test.
func (m *Motion) Extrapolate(now time.Time, dt float64) {
	m.advance(dt)
	if m.DrawingTrail && now.Sub(m.lastTrailAppend) > TrailInterval {
		m.lastTrailAppend = now
		if !m.InOwnTerritory {
			m.TrailPoints = append(m.TrailPoints, m.Position)
			if len(m.TrailPoints) > TrailMaxPoints {
				m.TrailPoints = m.TrailPoints[len(m.TrailPoints)-TrailMaxPoints:]
			}
		}
	}
}

// InTerritory reports whether p lies inside any of the player's owned areas.
func (m *Motion) InTerritory(p domain.Point) bool {
	for _, area := range m.OccupiedAreas {
		if geometry.PointInPolygon(p, area.Points) {
			return true
		}
	}
	return false
}
