package viewport

import "flowcanvas/geometry"

// PanVelocity computes the per-axis auto-pan velocity for a pointer
// position within a viewport. Each component is zero while the pointer
// is at least margin pixels from that axis' edges, then scales linearly
// from 0 to 1 across the margin; the sign points toward the crossed
// edge.
func PanVelocity(pointer geometry.Point, viewport geometry.Size, margin float64) geometry.Point {
	return geometry.Point{
		X: axisVelocity(pointer.X, viewport.Width, margin),
		Y: axisVelocity(pointer.Y, viewport.Height, margin),
	}
}

func axisVelocity(pos, span, margin float64) float64 {
	if margin <= 0 || span <= 0 {
		return 0
	}
	if pos < margin {
		return -geometry.Clamp((margin-pos)/margin, 0, 1)
	}
	if pos > span-margin {
		return geometry.Clamp((pos-(span-margin))/margin, 0, 1)
	}
	return 0
}

// AutoPanner repeatedly pans the viewport while a gesture holds the
// pointer near an edge. The owning gesture controller updates it on
// every pointer move and the host ticks it on the animation-frame
// cadence until the gesture ends.
type AutoPanner struct {
	margin   float64
	speed    float64
	pan      func(delta geometry.Point) bool
	active   bool
	velocity geometry.Point
}

// NewAutoPanner creates an auto-panner that pans through the given
// callback, typically Controller.PanBy bound to the live viewport size.
func NewAutoPanner(margin, speed float64, pan func(delta geometry.Point) bool) *AutoPanner {
	return &AutoPanner{margin: margin, speed: speed, pan: pan}
}

// Start activates the panner. Velocity stays zero until the first
// Update.
func (a *AutoPanner) Start() {
	a.active = true
}

// Update recomputes the pan velocity for the current pointer position.
func (a *AutoPanner) Update(pointer geometry.Point, viewport geometry.Size) {
	a.velocity = PanVelocity(pointer, viewport, a.margin)
}

// Tick applies one frame of panning. It reports whether the viewport
// moved; the caller then re-derives gesture geometry for the unchanged
// screen pointer.
func (a *AutoPanner) Tick() bool {
	if !a.active || (a.velocity.X == 0 && a.velocity.Y == 0) {
		return false
	}
	// The canvas moves opposite to the pointer's edge direction.
	delta := geometry.Point{X: -a.velocity.X * a.speed, Y: -a.velocity.Y * a.speed}
	return a.pan(delta)
}

// Stop deactivates the panner and clears its velocity.
func (a *AutoPanner) Stop() {
	a.active = false
	a.velocity = geometry.Point{}
}

// Active reports whether the panner is running.
func (a *AutoPanner) Active() bool {
	return a.active
}
