// Package geometry holds the pure math used by the movement and territory
// code: angle normalization, point-in-polygon tests, and polygon areas.
package geometry

import (
	"math"

	"github.com/Zeeyeah/subsurfempire/domain"
)

// NormalizeAngle wraps an angle into [-π, π]. Applying it twice gives the
// same result as applying it once.
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleTo returns the angle of the vector from a to b.
func AngleTo(a, b domain.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b domain.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// PointInPolygon reports whether p lies inside the polygon by ray casting.
// The polygon is treated as closed; the last point connects back to the
// first.
func PointInPolygon(p domain.Point, polygon []domain.Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// PolygonArea returns the absolute area of the polygon via the shoelace
// formula. Polygons with fewer than 3 points have zero area.
func PolygonArea(points []domain.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	area := 0.0
	for i, j := 0, len(points)-1; i < len(points); j, i = i, i+1 {
		area += points[j].X*points[i].Y - points[i].X*points[j].Y
	}
	return math.Abs(area) / 2
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
