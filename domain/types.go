package domain

// Point is a world coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Area is a closed polygon owned by a player. The polygon is implicitly
// closed: geometric tests reconnect the last point to the first.
type Area struct {
	Points []Point `json:"points"`
	Color  int     `json:"color"`
}

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// MaxPlayers is the capacity of the single shared session.
const MaxPlayers = 2

type Player struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Subreddit        string  `json:"subreddit"`
	Position         Point   `json:"position"`
	Direction        float64 `json:"direction"`
	Color            int     `json:"color"`
	IsAlive          bool    `json:"isAlive"`
	TrailPoints      []Point `json:"trailPoints"`
	OccupiedAreas    []Area  `json:"occupiedAreas"`
	IsInOwnTerritory bool    `json:"isInOwnTerritory"`
	LastUpdate       int64   `json:"lastUpdate"`
}

// GameState is the single shared session record. Insertion order of players
// is carried by join order: the first entrant gets the primary color and
// spawn, the second spawns near the first.
type GameState struct {
	GameID     string             `json:"gameId"`
	Players    map[string]*Player `json:"players"`
	Status     GameStatus         `json:"status"`
	MaxPlayers int                `json:"maxPlayers"`
	CreatedAt  int64              `json:"createdAt"`
}

// Clone returns a deep copy, so callers can hand out snapshots without
// exposing the live player maps.
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Players = make(map[string]*Player, len(g.Players))
	for id, p := range g.Players {
		cp.Players[id] = p.Clone()
	}
	return &cp
}

func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.TrailPoints = append([]Point(nil), p.TrailPoints...)
	cp.OccupiedAreas = make([]Area, len(p.OccupiedAreas))
	for i, a := range p.OccupiedAreas {
		cp.OccupiedAreas[i] = Area{Points: append([]Point(nil), a.Points...), Color: a.Color}
	}
	return &cp
}
