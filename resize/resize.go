// Package resize implements the resize gesture: a state machine that
// solves new dimensions and position for a node under size bounds,
// ancestor and descendant extent constraints, and an optional aspect
// ratio lock.
package resize

import (
	"math"

	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/viewport"
)

// ControlPosition names the resize control the gesture started on.
type ControlPosition int

const (
	Top ControlPosition = iota
	Right
	Bottom
	Left
	TopLeft
	TopRight
	BottomRight
	BottomLeft
)

// String returns the control position name.
func (p ControlPosition) String() string {
	switch p {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// Control describes which axes a control affects and which edges it
// anchors: a left-edge control moves x as well as width, a top-edge
// control moves y as well as height. Corner controls affect both axes.
type Control struct {
	AffectsWidth  bool
	AffectsHeight bool
	AnchorsLeft   bool
	AnchorsTop    bool
}

// Control returns the axis/anchor behavior for a control position.
func (p ControlPosition) Control() Control {
	switch p {
	case Top:
		return Control{AffectsHeight: true, AnchorsTop: true}
	case Right:
		return Control{AffectsWidth: true}
	case Bottom:
		return Control{AffectsHeight: true}
	case Left:
		return Control{AffectsWidth: true, AnchorsLeft: true}
	case TopLeft:
		return Control{AffectsWidth: true, AffectsHeight: true, AnchorsLeft: true, AnchorsTop: true}
	case TopRight:
		return Control{AffectsWidth: true, AffectsHeight: true, AnchorsTop: true}
	case BottomRight:
		return Control{AffectsWidth: true, AffectsHeight: true}
	case BottomLeft:
		return Control{AffectsWidth: true, AffectsHeight: true, AnchorsLeft: true}
	default:
		return Control{}
	}
}

// Change is one solved resize step: the node's new parent-relative
// position (in its origin frame), its new dimensions, and companion
// deltas for other nodes. Those cover child position compensations
// when the node's top/left edge moved, and the parent's growth when an
// expand-parent node outgrew its parent's interior.
type Change struct {
	NodeID graph.NodeID
	X, Y   float64
	Width  float64
	Height float64
	Deltas []graph.Delta
}

func (c Change) sameGeometry(o Change) bool {
	return c.X == o.X && c.Y == o.Y && c.Width == o.Width && c.Height == o.Height
}

// Options configure a resize Controller.
type Options struct {
	MinWidth  float64 // defaults to 10
	MinHeight float64 // defaults to 10
	MaxWidth  float64 // defaults to unbounded
	MaxHeight float64 // defaults to unbounded

	// KeepAspect locks width/height to the ratio at gesture start.
	KeepAspect bool

	// ShouldResize may veto a solved step: the geometry is computed
	// but not applied and no change is emitted.
	ShouldResize func(Change) bool
}

// Callbacks are the store-owner notifications, fired synchronously
// within the originating pointer callback.
type Callbacks struct {
	OnResizeStart func(id graph.NodeID)
	OnResize      func(Change)
	OnResizeEnd   func(id graph.NodeID)
}

// session is the per-gesture snapshot, created on pointer down and
// discarded on release.
type session struct {
	node    graph.NodeID
	control Control

	startW, startH float64
	startLeft      float64 // absolute top-left at gesture start
	startTop       float64
	startPointer   geometry.Point // canvas, rotation-corrected
	aspect         float64
	rotation       float64
	rotationCenter geometry.Point

	// Extent snapshots, taken once at gesture start.
	parentRect  *geometry.Rect // constrains growing
	childBounds *geometry.Rect // constrains shrinking

	// Parent snapshot for an expand-parent node. Growth past the
	// interior is pushed into the parent rather than clamped, and the
	// snapshot keeps the emitted parent geometry stable while earlier
	// steps of the same gesture are being applied.
	growParent graph.NodeID
	growPos    geometry.Point // parent declared position at start
	growAbs    geometry.Point // parent absolute position at start
	growSize   geometry.Size

	// childStart holds the start-relative positions of expand-parent
	// children, compensated when the node's top/left moves.
	childStart map[graph.NodeID]geometry.Point

	prev    Change
	emitted bool
}

// correct maps a canvas pointer into the node's unrotated frame.
func (s *session) correct(p geometry.Point) geometry.Point {
	if s.rotation == 0 {
		return p
	}
	return geometry.RotatePoint(p, s.rotationCenter, -s.rotation)
}

// Controller is the resize gesture state machine.
type Controller struct {
	store *graph.Store
	vp    *viewport.Controller
	opts  Options
	cbs   Callbacks

	session *session
}

// NewController creates a resize controller bound to a store and
// viewport.
func NewController(store *graph.Store, vp *viewport.Controller, opts Options, cbs Callbacks) *Controller {
	if opts.MinWidth <= 0 {
		opts.MinWidth = 10
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = 10
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = math.Inf(1)
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = math.Inf(1)
	}
	return &Controller{store: store, vp: vp, opts: opts, cbs: cbs}
}

// Resizing reports whether a resize gesture is live.
func (c *Controller) Resizing() bool {
	return c.session != nil
}

// PointerDown starts a resize on the given node and control, taking the
// extent snapshots the solver clamps against. A gesture already in
// flight is implicitly cancelled.
func (c *Controller) PointerDown(screen geometry.Point, nodeID graph.NodeID, position ControlPosition) {
	if c.session != nil {
		c.Cancel()
	}
	in, ok := c.store.Get(nodeID)
	if !ok {
		return
	}

	size := in.Size()
	pointer := c.vp.ToCanvasPoint(screen)
	s := &session{
		node:      nodeID,
		control:   position.Control(),
		startW:    size.Width,
		startH:    size.Height,
		startLeft: in.AbsolutePosition.X,
		startTop:  in.AbsolutePosition.Y,
		rotation:  in.Node.Rotation,
		rotationCenter: geometry.Point{
			X: in.AbsolutePosition.X + size.Width/2,
			Y: in.AbsolutePosition.Y + size.Height/2,
		},
	}
	s.startPointer = s.correct(pointer)
	if size.Height > 0 {
		s.aspect = size.Width / size.Height
	}
	s.parentRect = c.parentExtent(in)
	s.childBounds = c.childExtent(in)
	s.childStart = c.snapshotExpandChildren(in)
	if in.Node.ExpandParent && in.Node.Parent != "" {
		if parent, ok := c.store.Get(in.Node.Parent); ok {
			s.growParent = parent.Node.ID
			s.growPos = parent.Node.Position
			s.growAbs = parent.AbsolutePosition
			s.growSize = parent.Size()
		}
	}
	s.prev = Change{
		NodeID: nodeID,
		X:      in.Node.Position.X,
		Y:      in.Node.Position.Y,
		Width:  size.Width,
		Height: size.Height,
	}
	c.session = s

	if c.cbs.OnResizeStart != nil {
		c.cbs.OnResizeStart(nodeID)
	}
}

// parentExtent snapshots the parent's interior when the node is clamped
// to it. An expand-parent node grows its parent instead, so growing is
// unconstrained.
func (c *Controller) parentExtent(in *graph.InternalNode) *geometry.Rect {
	if in.Node.Extent.Kind != graph.ExtentParent || in.Node.ExpandParent {
		return nil
	}
	parent, ok := c.store.Get(in.Node.Parent)
	if !ok {
		return nil
	}
	r := parent.Rect()
	return &r
}

// childExtent snapshots the minimal bounding rect of the children that
// must stay contained, which limits how far the node can shrink.
func (c *Controller) childExtent(in *graph.InternalNode) *geometry.Rect {
	var box geometry.Box
	found := false
	for _, child := range c.store.Children(in.Node.ID) {
		if child.Node.Extent.Kind != graph.ExtentParent {
			continue
		}
		b := geometry.RectToBox(child.Rect())
		if !found {
			box = b
			found = true
		} else {
			box = box.Union(b)
		}
	}
	if !found {
		return nil
	}
	r := geometry.BoxToRect(box)
	return &r
}

// snapshotExpandChildren records the start positions of expand-parent
// children so they can be compensated when the node's top/left moves.
func (c *Controller) snapshotExpandChildren(in *graph.InternalNode) map[graph.NodeID]geometry.Point {
	var out map[graph.NodeID]geometry.Point
	for _, child := range c.store.Children(in.Node.ID) {
		if !child.Node.ExpandParent {
			continue
		}
		if out == nil {
			out = make(map[graph.NodeID]geometry.Point)
		}
		out[child.Node.ID] = child.Node.Position
	}
	return out
}

// PointerMove runs the solver for the current pointer position and
// emits the step when the geometry actually changed.
func (c *Controller) PointerMove(screen geometry.Point) {
	s := c.session
	if s == nil {
		return
	}
	in, ok := c.store.Get(s.node)
	if !ok {
		return
	}

	dw, dh := c.solve(s.correct(c.vp.ToCanvasPoint(screen)))

	newW := s.startW + dw
	newH := s.startH + dh
	newLeft := s.startLeft
	newTop := s.startTop
	if s.control.AnchorsLeft {
		newLeft = s.startLeft - dw
	}
	if s.control.AnchorsTop {
		newTop = s.startTop - dh
	}

	// Convert the absolute top-left back into the declared position
	// frame: parent offset plus the origin fraction of the new size.
	parentAbs := geometry.Point{}
	if parent, ok := c.store.Get(in.Node.Parent); ok && in.Node.Parent != "" {
		parentAbs = parent.AbsolutePosition
	}

	// An expand-parent node pushes growth into its parent. The child
	// rect is taken against the gesture-start snapshot so each step
	// emits the full grown geometry, and the declared position is
	// expressed against where the parent's top-left will be once the
	// shift is applied.
	var parentDelta *graph.Delta
	if s.growParent != "" {
		childRect := geometry.Rect{
			X:      newLeft - s.growAbs.X,
			Y:      newTop - s.growAbs.Y,
			Width:  newW,
			Height: newH,
		}
		shift, grown, grew := graph.ExpandParentRect(childRect, s.growSize)
		parentAbs = s.growAbs.Add(shift)
		if grew {
			pos := s.growPos.Add(shift)
			size := grown
			parentDelta = &graph.Delta{NodeID: s.growParent, Position: &pos, Size: &size}
		}
	}
	origin := in.Node.OriginOffset(geometry.Size{Width: newW, Height: newH})

	change := Change{
		NodeID: s.node,
		X:      newLeft - parentAbs.X + origin.X,
		Y:      newTop - parentAbs.Y + origin.Y,
		Width:  newW,
		Height: newH,
	}
	if change.sameGeometry(s.prev) {
		return
	}

	// When the top/left edge moved, expand-parent children that are not
	// part of the gesture keep their visual position.
	shiftX := newLeft - s.startLeft
	shiftY := newTop - s.startTop
	if (shiftX != 0 || shiftY != 0) && len(s.childStart) > 0 {
		for id, start := range s.childStart {
			pos := geometry.Point{X: start.X - shiftX, Y: start.Y - shiftY}
			change.Deltas = append(change.Deltas, graph.Delta{NodeID: id, Position: &pos})
		}
	}
	if parentDelta != nil {
		change.Deltas = append(change.Deltas, *parentDelta)
	}

	if c.opts.ShouldResize != nil && !c.opts.ShouldResize(change) {
		return
	}

	s.prev = change
	s.emitted = true
	if c.cbs.OnResize != nil {
		c.cbs.OnResize(change)
	}
}

// PointerUp ends the gesture and clears the session.
func (c *Controller) PointerUp(screen geometry.Point) {
	s := c.session
	if s == nil {
		return
	}
	c.PointerMove(screen)
	c.session = nil
	if c.cbs.OnResizeEnd != nil {
		c.cbs.OnResizeEnd(s.node)
	}
}

// Cancel aborts the gesture. Changes already emitted are not retracted.
func (c *Controller) Cancel() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	if c.cbs.OnResizeEnd != nil {
		c.cbs.OnResizeEnd(s.node)
	}
}

// solve turns a rotation-corrected pointer into clamped width/height
// deltas. Positive deltas always mean growth; the anchor sign is applied
// when deriving the raw delta and again when placing the edges.
func (c *Controller) solve(pointer geometry.Point) (float64, float64) {
	s := c.session
	dxp := pointer.X - s.startPointer.X
	dyp := pointer.Y - s.startPointer.Y

	var dw, dh float64
	if s.control.AffectsWidth {
		dw = dxp
		if s.control.AnchorsLeft {
			dw = -dxp
		}
	}
	if s.control.AffectsHeight {
		dh = dyp
		if s.control.AnchorsTop {
			dh = -dyp
		}
	}

	lock := c.opts.KeepAspect && s.aspect > 0
	if !lock {
		if s.control.AffectsWidth {
			dw = c.clampWidth(dw, 0)
		}
		if s.control.AffectsHeight {
			dh = c.clampHeight(dh, 0)
		}
		return dw, dh
	}

	// Aspect lock: pick the driving axis (larger unconstrained growth
	// for corner controls, the affected axis for edge controls), clamp
	// it with the other axis' bounds folded in through the ratio, and
	// mirror the result.
	widthDrives := s.control.AffectsWidth
	if s.control.AffectsWidth && s.control.AffectsHeight {
		widthDrives = math.Abs(dw) >= math.Abs(dh*s.aspect)
	}
	if widthDrives {
		dw = c.clampWidth(dw, s.aspect)
		dh = dw / s.aspect
	} else {
		dh = c.clampHeight(dh, s.aspect)
		dw = dh * s.aspect
	}
	return dw, dh
}

// clampWidth reduces a raw width delta by the maximum violation it
// causes. With a non-zero aspect the height bounds are reinterpreted as
// width bounds through the ratio and folded into the same maxima.
func (c *Controller) clampWidth(dw, aspect float64) float64 {
	s := c.session
	grow, shrink := widthViolations(s, dw, c.opts.MinWidth, c.opts.MaxWidth)
	if aspect > 0 {
		hGrow, hShrink := heightViolations(s, dw/aspect, c.opts.MinHeight, c.opts.MaxHeight)
		grow = math.Max(grow, hGrow*aspect)
		shrink = math.Max(shrink, hShrink*aspect)
	}
	return dw - grow + shrink
}

// clampHeight is the vertical counterpart of clampWidth.
func (c *Controller) clampHeight(dh, aspect float64) float64 {
	s := c.session
	grow, shrink := heightViolations(s, dh, c.opts.MinHeight, c.opts.MaxHeight)
	if aspect > 0 {
		wGrow, wShrink := widthViolations(s, dh*aspect, c.opts.MinWidth, c.opts.MaxWidth)
		grow = math.Max(grow, wGrow/aspect)
		shrink = math.Max(shrink, wShrink/aspect)
	}
	return dh - grow + shrink
}

// widthViolations measures how far a width delta overshoots the growing
// bounds (max size, parent interior) and the shrinking bounds (min
// size, child extent), per direction.
func widthViolations(s *session, dw, minW, maxW float64) (grow, shrink float64) {
	newW := s.startW + dw
	grow = excess(newW - maxW)
	shrink = excess(minW - newW)

	if s.parentRect != nil {
		if s.control.AnchorsLeft {
			grow = math.Max(grow, excess(s.parentRect.X-(s.startLeft-dw)))
		} else {
			grow = math.Max(grow, excess((s.startLeft+newW)-(s.parentRect.X+s.parentRect.Width)))
		}
	}
	if s.childBounds != nil {
		if s.control.AnchorsLeft {
			shrink = math.Max(shrink, excess((s.startLeft-dw)-s.childBounds.X))
		} else {
			shrink = math.Max(shrink, excess((s.childBounds.X+s.childBounds.Width)-(s.startLeft+newW)))
		}
	}
	return grow, shrink
}

// heightViolations is the vertical counterpart of widthViolations.
func heightViolations(s *session, dh, minH, maxH float64) (grow, shrink float64) {
	newH := s.startH + dh
	grow = excess(newH - maxH)
	shrink = excess(minH - newH)

	if s.parentRect != nil {
		if s.control.AnchorsTop {
			grow = math.Max(grow, excess(s.parentRect.Y-(s.startTop-dh)))
		} else {
			grow = math.Max(grow, excess((s.startTop+newH)-(s.parentRect.Y+s.parentRect.Height)))
		}
	}
	if s.childBounds != nil {
		if s.control.AnchorsTop {
			shrink = math.Max(shrink, excess((s.startTop-dh)-s.childBounds.Y))
		} else {
			shrink = math.Max(shrink, excess((s.childBounds.Y+s.childBounds.Height)-(s.startTop+newH)))
		}
	}
	return grow, shrink
}

// excess is the shared "clamp by excess beyond a bound" helper: the
// violation magnitude, zero when the bound holds.
func excess(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
