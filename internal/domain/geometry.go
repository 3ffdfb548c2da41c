package domain

import "math"

// Geometry is expressed in points. A point is one terminal column wide and
// half a terminal row tall, so artwork drawn with half-block glyphs is square
// when its point width equals its point height.

// Point is a location in points
type Point struct {
	X, Y int
}

// Size is a width/height pair in points
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle in points. The zero Rect means
// "no geometry available".
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r has no area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and o overlap
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Offset returns r translated by dx, dy
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Lerp interpolates between a and b; t is clamped to [0, 1]
func Lerp(a, b Rect, t float64) Rect {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	mix := func(x, y int) int {
		return int(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Rect{
		X: mix(a.X, b.X),
		Y: mix(a.Y, b.Y),
		W: mix(a.W, b.W),
		H: mix(a.H, b.H),
	}
}

// RowsFor converts a point height to terminal rows, rounding up
func RowsFor(points int) int {
	if points <= 0 {
		return 0
	}
	return (points + 1) / 2
}
