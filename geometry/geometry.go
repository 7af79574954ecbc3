// Package geometry contains the fundamental spatial types used throughout
// the flowcanvas interaction core. All coordinates are float64 canvas units.
package geometry

import "math"

// Point represents a 2D coordinate in canvas or screen space.
type Point struct {
	X, Y float64
}

// Add returns the component-wise sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns the point multiplied by a scalar.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Size represents the dimensions of a node or viewport.
type Size struct {
	Width, Height float64
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Rect is an axis-aligned rectangle described by its top-left corner
// and its dimensions.
type Rect struct {
	X, Y, Width, Height float64
}

// Box is an axis-aligned rectangle described by two opposite corners.
// Boxes make union computation trivial; rects are the natural shape for
// node geometry. Conversions between the two are lossless.
type Box struct {
	X, Y, X2, Y2 float64
}

// RectToBox converts a rect to its corner representation.
func RectToBox(r Rect) Box {
	return Box{X: r.X, Y: r.Y, X2: r.X + r.Width, Y2: r.Y + r.Height}
}

// BoxToRect converts a corner representation back to a rect.
func BoxToRect(b Box) Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.X2 - b.X, Height: b.Y2 - b.Y}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		X:  math.Min(b.X, o.X),
		Y:  math.Min(b.Y, o.Y),
		X2: math.Max(b.X2, o.X2),
		Y2: math.Max(b.Y2, o.Y2),
	}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(o Rect) Rect {
	return BoxToRect(RectToBox(r).Union(RectToBox(o)))
}

// Overlap returns the overlapping area of two rects, zero if disjoint.
func (r Rect) Overlap(o Rect) float64 {
	xOverlap := math.Max(0, math.Min(r.X+r.Width, o.X+o.Width)-math.Max(r.X, o.X))
	yOverlap := math.Max(0, math.Min(r.Y+r.Height, o.Y+o.Height)-math.Max(r.Y, o.Y))
	return xOverlap * yOverlap
}

// Contains checks if a point lies within the rect (inclusive of all edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsRect checks if o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width && o.Y+o.Height <= r.Y+r.Height
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPoint restricts a point to lie within a rect.
func ClampPoint(p Point, r Rect) Point {
	return Point{
		X: Clamp(p.X, r.X, r.X+r.Width),
		Y: Clamp(p.Y, r.Y, r.Y+r.Height),
	}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SnapToGrid rounds each coordinate to the nearest multiple of the grid
// spacing for that axis. Non-positive spacing leaves the axis untouched.
func SnapToGrid(p Point, gx, gy float64) Point {
	out := p
	if gx > 0 {
		out.X = math.Round(p.X/gx) * gx
	}
	if gy > 0 {
		out.Y = math.Round(p.Y/gy) * gy
	}
	return out
}

// RotatePoint rotates p around center by the given angle in degrees,
// counter-clockwise for positive angles.
func RotatePoint(p, center Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	rad := degrees * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}
