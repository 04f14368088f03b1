package game

import "time"

// World geometry. The play field is a circle; players bounce off an inset
// boundary so the trail never leaves the field.
const (
	FieldCenterX   = 400.0
	FieldCenterY   = 300.0
	FieldRadius    = 1000.0
	BoundaryMargin = 10.0
)

// Movement tuning.
const (
	PlayerSpeed  = 50.0 // units per second
	TurnSpeed    = 3.0  // radians per second
	TurnDeadband = 0.1  // no rotation below this angular difference
)

// Trail rules.
const (
	TrailInterval  = 30 * time.Millisecond // wall-clock throttle on appends
	TrailMaxPoints = 2000
	TrailClaimMin  = 50 // minimum trail length for a territory claim
)

// Self-trail collision. The newest points are excluded so the player does
// not instantly collide with the point just appended.
const (
	SelfCollisionThreshold  = 15.0
	SelfCollisionSkipNewest = 20
	SelfCollisionMinTrail   = 10
)

// Opponent collision.
const (
	CollisionThreshold     = 20.0
	SpawnProtection        = 2 * time.Second
	TrailCollisionMinGuard = 10 // opponent trails shorter than this are ignored
)

// Remote prediction.
const (
	DirectionEpsilon = 0.01 // authoritative direction deltas below this are noise
	SnapDistance     = 30.0 // hard-snap the shadow beyond this divergence
)

// Spawning.
const (
	SeedTerritoryRadius   = 30.0
	SeedTerritorySegments = 16
	SpawnRadius           = 80.0 // second spawn is clamped within this of center
)

// Player colors by join order.
const (
	ColorPrimary   = 0xff4500
	ColorSecondary = 0x00ff00
)
