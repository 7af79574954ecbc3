package viewport

import (
	"time"

	"github.com/bep/debounce"

	"flowcanvas/geometry"
)

// DefaultMinZoom and DefaultMaxZoom apply when Options leaves the zoom
// range unset.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 2.0
)

// Options configure a viewport Controller.
type Options struct {
	MinZoom float64
	MaxZoom float64

	// TranslateExtent is the canvas-space region panning is confined
	// to. The zero rect leaves panning unbounded.
	TranslateExtent geometry.Rect

	// OnChange fires after every user-caused transform change.
	// Externally driven changes applied through SyncTransform are
	// tagged and never re-emitted here, so a scroll or pinch source
	// can stay synchronized without feedback loops.
	OnChange func(Transform)

	// CoalesceDelay debounces OnChange so gesture streams do not flood
	// the host. Zero emits synchronously.
	CoalesceDelay time.Duration
}

// Controller owns the live transform. It applies pan and zoom deltas,
// enforces the zoom range and translate extent, and drives animated
// transitions through host Tick calls.
type Controller struct {
	opts       Options
	transform  Transform
	transition *Transition
	coalesce   func(func())
}

// NewController creates a controller at the identity transform.
func NewController(opts Options) *Controller {
	if opts.MinZoom == 0 && opts.MaxZoom == 0 {
		opts.MinZoom = DefaultMinZoom
		opts.MaxZoom = DefaultMaxZoom
	}
	c := &Controller{opts: opts, transform: Identity()}
	if opts.CoalesceDelay > 0 {
		c.coalesce = debounce.New(opts.CoalesceDelay)
	}
	return c
}

// Transform returns the live transform.
func (c *Controller) Transform() Transform {
	return c.transform
}

// ToCanvasPoint converts a screen point to canvas space using the live
// transform.
func (c *Controller) ToCanvasPoint(p geometry.Point) geometry.Point {
	return c.transform.Invert(p)
}

// ToCanvasPointSnapped converts a screen point to canvas space, snapped
// to the grid.
func (c *Controller) ToCanvasPointSnapped(p geometry.Point, gx, gy float64) geometry.Point {
	return c.transform.InvertSnapped(p, gx, gy)
}

// ToScreenPoint converts a canvas point to screen space using the live
// transform.
func (c *Controller) ToScreenPoint(p geometry.Point) geometry.Point {
	return c.transform.Apply(p)
}

// SyncTransform adopts an externally driven transform change. The zoom
// range still applies, but OnChange is not re-emitted: the change came
// from the outside and echoing it back would loop.
func (c *Controller) SyncTransform(t Transform) {
	t.Zoom = geometry.Clamp(t.Zoom, c.opts.MinZoom, c.opts.MaxZoom)
	c.transform = t
}

func (c *Controller) emit() {
	if c.opts.OnChange == nil {
		return
	}
	if c.coalesce != nil {
		c.coalesce(func() { c.opts.OnChange(c.transform) })
		return
	}
	c.opts.OnChange(c.transform)
}

// SetViewport moves the transform toward target, snapping when duration
// is zero and animating otherwise. The returned Transition's Done
// channel closes when the move completes; a concurrent call supersedes
// the prior pending transition.
func (c *Controller) SetViewport(target Transform, duration time.Duration) *Transition {
	target.Zoom = geometry.Clamp(target.Zoom, c.opts.MinZoom, c.opts.MaxZoom)

	if c.transition != nil {
		c.transition.finish()
		c.transition = nil
	}

	tr := newTransition(c, target, duration)
	if duration <= 0 {
		c.transform = target
		c.emit()
		tr.finish()
		return tr
	}
	c.transition = tr
	return tr
}

// SetViewportConstrained is SetViewport with the target first clamped so
// panning cannot move the canvas beyond the translate extent given the
// current viewport pixel size.
func (c *Controller) SetViewportConstrained(target Transform, viewport geometry.Size, duration time.Duration) *Transition {
	return c.SetViewport(c.clampTransform(target, viewport), duration)
}

// PanBy applies a screen-space translate delta through the constrained
// setter. It reports whether the transform actually changed; a no-op or
// fully clamped delta returns false.
func (c *Controller) PanBy(delta geometry.Point, viewport geometry.Size) bool {
	target := c.transform
	target.X += delta.X
	target.Y += delta.Y
	target = c.clampTransform(target, viewport)
	if target == c.transform {
		return false
	}
	c.transform = target
	c.emit()
	return true
}

// clampTransform restricts a transform to the zoom range and, when a
// translate extent is configured, solves the per-axis translate bounds
// for the current viewport size.
func (c *Controller) clampTransform(t Transform, viewport geometry.Size) Transform {
	t.Zoom = geometry.Clamp(t.Zoom, c.opts.MinZoom, c.opts.MaxZoom)

	extent := c.opts.TranslateExtent
	if extent.IsEmpty() || viewport.IsZero() {
		return t
	}

	t.X = clampTranslate(t.X, viewport.Width, extent.X, extent.X+extent.Width, t.Zoom)
	t.Y = clampTranslate(t.Y, viewport.Height, extent.Y, extent.Y+extent.Height, t.Zoom)
	return t
}

// clampTranslate solves one axis: the visible canvas window must stay
// inside [lo, hi]. When the extent is smaller than the viewport the
// midpoint wins.
func clampTranslate(translate, viewportSpan, lo, hi, zoom float64) float64 {
	min := viewportSpan - hi*zoom
	max := -lo * zoom
	if min > max {
		return (min + max) / 2
	}
	return geometry.Clamp(translate, min, max)
}

// FitOptions tune FitBounds.
type FitOptions struct {
	// MinZoom and MaxZoom override the controller's range when
	// non-zero.
	MinZoom float64
	MaxZoom float64
	// Padding inflates the bounds by the given fraction before
	// fitting.
	Padding  float64
	Duration time.Duration
}

// FitBounds computes the zoom and translate that center the given
// canvas-space bounds in the viewport and moves there. The zoom is the
// smaller of the two per-axis ratios, padded and clamped. Returns false
// without side effects when there is nothing to fit.
func (c *Controller) FitBounds(bounds geometry.Rect, viewport geometry.Size, opts FitOptions) bool {
	if bounds.IsEmpty() || viewport.IsZero() {
		return false
	}

	minZoom := opts.MinZoom
	if minZoom == 0 {
		minZoom = c.opts.MinZoom
	}
	maxZoom := opts.MaxZoom
	if maxZoom == 0 {
		maxZoom = c.opts.MaxZoom
	}

	zoomX := viewport.Width / (bounds.Width * (1 + opts.Padding))
	zoomY := viewport.Height / (bounds.Height * (1 + opts.Padding))
	zoom := geometry.Clamp(minFloat(zoomX, zoomY), minZoom, maxZoom)

	center := bounds.Center()
	target := Transform{
		X:    viewport.Width/2 - center.X*zoom,
		Y:    viewport.Height/2 - center.Y*zoom,
		Zoom: zoom,
	}
	c.SetViewport(target, opts.Duration)
	return true
}

// ZoomAt zooms by the given factor keeping the canvas point under the
// screen position stationary, the way wheel zoom behaves.
func (c *Controller) ZoomAt(screen geometry.Point, factor float64) bool {
	before := c.transform.Invert(screen)
	target := c.transform
	target.Zoom = geometry.Clamp(target.Zoom*factor, c.opts.MinZoom, c.opts.MaxZoom)
	target.X = screen.X - before.X*target.Zoom
	target.Y = screen.Y - before.Y*target.Zoom
	if target == c.transform {
		return false
	}
	c.transform = target
	c.emit()
	return true
}

// Tick advances a pending transition. The host calls this on its
// animation-frame cadence.
func (c *Controller) Tick(now time.Time) {
	if c.transition == nil {
		return
	}
	if done := c.transition.step(now); done {
		c.transition = nil
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
