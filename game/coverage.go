package game

import (
	"math"
	"sort"

	"github.com/Zeeyeah/subsurfempire/domain"
	"github.com/Zeeyeah/subsurfempire/geometry"
)

// CoverageEntry is one leaderboard row: a player's claimed share of the
// circular field.
type CoverageEntry struct {
	PlayerID string  `json:"playerId"`
	Username string  `json:"username"`
	Percent  float64 `json:"percent"`
	Color    int     `json:"color"`
}

// Coverage sums each player's claimed polygon areas against the total field
// area and returns the rows sorted by share, largest first. Overlapping
// polygons are counted at face value, same as the rendering does.
func Coverage(players map[string]*domain.Player) []CoverageEntry {
	total := math.Pi * FieldRadius * FieldRadius
	rows := make([]CoverageEntry, 0, len(players))
	for id, p := range players {
		sum := 0.0
		for _, area := range p.OccupiedAreas {
			sum += geometry.PolygonArea(area.Points)
		}
		rows = append(rows, CoverageEntry{
			PlayerID: id,
			Username: p.Username,
			Percent:  math.Min(100, sum/total*100),
			Color:    p.Color,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Percent > rows[j].Percent })
	return rows
}
