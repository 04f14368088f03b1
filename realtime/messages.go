// Package realtime carries the best-effort push channel: a websocket hub that
// fans session events out to connected clients. Push is advisory only; the
// polled state endpoint remains the source of truth and every message here
// can be dropped without breaking a client.
package realtime

import "github.com/Zeeyeah/subsurfempire/domain"

const (
	TypeGameState      = "gameStateUpdate"
	TypePlayerUpdate   = "playerUpdate"
	TypeTrailUpdate    = "trailUpdate"
	TypeTerritoryClaim = "territoryClaim"
	TypePlayerRemoved  = "playerRemoved"
)

// PlayerUpdate is a single player's direction/position sample. It carries
// the territory flag too, so a consumer applying the delta keeps the
// collision immunity rules intact between polls.
type PlayerUpdate struct {
	PlayerID         string       `json:"playerId"`
	Position         domain.Point `json:"position"`
	Direction        float64      `json:"direction"`
	IsInOwnTerritory bool         `json:"isInOwnTerritory"`
	Timestamp        int64        `json:"timestamp"`
}

// TrailUpdate replaces a player's trail wholesale.
type TrailUpdate struct {
	PlayerID    string         `json:"playerId"`
	TrailPoints []domain.Point `json:"trailPoints"`
	Timestamp   int64          `json:"timestamp"`
}

// TerritoryClaim announces a closed-loop claim.
type TerritoryClaim struct {
	PlayerID  string      `json:"playerId"`
	Area      domain.Area `json:"occupiedArea"`
	Timestamp int64       `json:"timestamp"`
}

// Envelope is the single wire shape for every push message. Exactly one
// payload field is set per Type.
type Envelope struct {
	Type           string            `json:"type"`
	GameID         string            `json:"gameId,omitempty"`
	PlayerID       string            `json:"playerId,omitempty"`
	GameState      *domain.GameState `json:"gameState,omitempty"`
	PlayerUpdate   *PlayerUpdate     `json:"playerUpdate,omitempty"`
	TrailUpdate    *TrailUpdate      `json:"trailUpdate,omitempty"`
	TerritoryClaim *TerritoryClaim   `json:"territoryClaim,omitempty"`
}
