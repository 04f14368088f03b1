package game

import (
	"time"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/geometry"
)

// Opponent is the view of a remote player the detector needs: predicted
// position, trail echo, and territory status.
type Opponent struct {
	ID             string
	Alive          bool
	Position       domain.Point
	TrailPoints    []domain.Point
	InOwnTerritory bool
}

type HitKind int

const (
	HitPlayer HitKind = iota
	HitTrail
)

// Hit is a terminal elimination: there is no wounded state, only
// alive or eliminated.
type Hit struct {
	OpponentID string
	Kind       HitKind
}

// Detector evaluates the local player against opponents. Eliminations are
// client-declared; each side runs its own detector and self-reports.
type Detector struct {
	startedAt time.Time
}

func NewDetector(startedAt time.Time) *Detector {
	return &Detector{startedAt: startedAt}
}

// Check returns the first hit found, or nil. No checks fire during the
// spawn-protection grace window, and two players both inside their own
// territories never collide.
func (d *Detector) Check(now time.Time, self *Motion, opponents []Opponent) *Hit {
	if now.Sub(d.startedAt) < SpawnProtection {
		return nil
	}

	for _, opp := range opponents {
		if !opp.Alive {
			continue
		}
		if self.InOwnTerritory && opp.InOwnTerritory {
			continue
		}
		if geometry.Distance(self.Position, opp.Position) < CollisionThreshold {
			return &Hit{OpponentID: opp.ID, Kind: HitPlayer}
		}
	}

	if self.InOwnTerritory {
		return nil
	}
	for _, opp := range opponents {
		if !opp.Alive || len(opp.TrailPoints) < TrailCollisionMinGuard {
			continue
		}
		for i := 0; i < len(opp.TrailPoints)-TrailCollisionMinGuard; i++ {
			if geometry.Distance(self.Position, opp.TrailPoints[i]) < CollisionThreshold {
				return &Hit{OpponentID: opp.ID, Kind: HitTrail}
			}
		}
	}
	return nil
}
