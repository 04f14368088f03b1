package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zeeyeah/subsurfempire/domain"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"already normalized", 1.5, 1.5},
		{"above pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"below minus pi", -math.Pi - 0.5, math.Pi - 0.5},
		{"full turn", 2 * math.Pi, 0},
		{"many turns", 7 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-9)
		})
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5, Distance(domain.Point{X: 0, Y: 0}, domain.Point{X: 3, Y: 4}), 1e-9)
	assert.Zero(t, Distance(domain.Point{X: 1, Y: 1}, domain.Point{X: 1, Y: 1}))
}

func TestAngleTo(t *testing.T) {
	from := domain.Point{X: 0, Y: 0}
	assert.InDelta(t, 0, AngleTo(from, domain.Point{X: 1, Y: 0}), 1e-9)
	assert.InDelta(t, math.Pi/2, AngleTo(from, domain.Point{X: 0, Y: 1}), 1e-9)
	assert.InDelta(t, math.Pi, AngleTo(from, domain.Point{X: -1, Y: 0}), 1e-9)
}

func TestPointInPolygon(t *testing.T) {
	square := []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	tests := []struct {
		name string
		p    domain.Point
		want bool
	}{
		{"center", domain.Point{X: 5, Y: 5}, true},
		{"outside right", domain.Point{X: 15, Y: 5}, false},
		{"outside above", domain.Point{X: 5, Y: 15}, false},
		{"far away", domain.Point{X: -100, Y: -100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(tt.p, square))
		})
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape: the notch between the arms is outside.
	u := []domain.Point{
		{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 30},
		{X: 20, Y: 30}, {X: 20, Y: 10}, {X: 10, Y: 10},
		{X: 10, Y: 30}, {X: 0, Y: 30},
	}
	assert.True(t, PointInPolygon(domain.Point{X: 5, Y: 20}, u))
	assert.False(t, PointInPolygon(domain.Point{X: 15, Y: 20}, u))
	assert.True(t, PointInPolygon(domain.Point{X: 15, Y: 5}, u))
}

func TestPointInPolygonTranslationInvariant(t *testing.T) {
	polygon := []domain.Point{{X: 0, Y: 0}, {X: 40, Y: 10}, {X: 30, Y: 40}, {X: 5, Y: 25}}
	probes := []domain.Point{
		{X: 20, Y: 20}, {X: 2, Y: 2}, {X: 38, Y: 12},
		{X: -5, Y: -5}, {X: 50, Y: 50}, {X: 35, Y: 38},
	}
	offsets := []domain.Point{
		{X: 17.5, Y: -42},
		{X: -900, Y: 300},
		{X: 10000, Y: 10000},
	}

	for _, off := range offsets {
		shifted := make([]domain.Point, len(polygon))
		for i, v := range polygon {
			shifted[i] = domain.Point{X: v.X + off.X, Y: v.Y + off.Y}
		}
		for _, p := range probes {
			moved := domain.Point{X: p.X + off.X, Y: p.Y + off.Y}
			assert.Equal(t, PointInPolygon(p, polygon), PointInPolygon(moved, shifted),
				"probe %+v offset %+v", p, off)
		}
	}
}

func TestPolygonArea(t *testing.T) {
	square := []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.InDelta(t, 100, PolygonArea(square), 1e-9)

	// Winding order must not matter.
	reversed := []domain.Point{{X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	assert.InDelta(t, 100, PolygonArea(reversed), 1e-9)

	assert.Zero(t, PolygonArea(nil))
	assert.Zero(t, PolygonArea([]domain.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(42, 0, 10))
}
