// Package viewport owns the pan/zoom transform between screen-pixel
// space and canvas-logical space, the controller that keeps it within
// configured bounds, and the auto-pan helper used while gestures run
// near the viewport edge.
package viewport

import "flowcanvas/geometry"

// Transform maps canvas-logical coordinates to screen pixels: a point is
// scaled by Zoom and then offset by the translation.
type Transform struct {
	X    float64
	Y    float64
	Zoom float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Zoom: 1}
}

// Apply converts a canvas-space point to screen space.
func (t Transform) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X*t.Zoom + t.X,
		Y: p.Y*t.Zoom + t.Y,
	}
}

// Invert converts a screen-space point to canvas space.
func (t Transform) Invert(p geometry.Point) geometry.Point {
	zoom := t.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return geometry.Point{
		X: (p.X - t.X) / zoom,
		Y: (p.Y - t.Y) / zoom,
	}
}

// InvertSnapped converts a screen-space point to canvas space and snaps
// the result to the nearest grid multiple per axis.
func (t Transform) InvertSnapped(p geometry.Point, gx, gy float64) geometry.Point {
	return geometry.SnapToGrid(t.Invert(p), gx, gy)
}
