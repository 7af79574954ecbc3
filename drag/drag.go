// Package drag implements the multi-node drag gesture: a state machine
// that turns a pointer stream into extent-clamped position deltas for
// the selected nodes, with edge auto-panning while the gesture runs.
package drag

import (
	"sort"
	"time"

	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/viewport"
)

// State is the gesture phase.
type State int

const (
	// StateIdle means no pointer is down.
	StateIdle State = iota
	// StateArmed means the pointer is down but the drag-start threshold
	// has not been exceeded yet.
	StateArmed
	// StateDragging means the gesture has committed and emits deltas.
	StateDragging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Options configure a drag Controller.
type Options struct {
	// Threshold is the pointer distance in screen pixels before an
	// armed gesture commits to dragging.
	Threshold float64

	// HoldThreshold commits an armed gesture after the pointer has
	// been down this long, even without movement. Zero disables it.
	HoldThreshold time.Duration

	// SnapGrid snaps candidate positions to multiples of the spacing
	// per axis. Zero components disable snapping for that axis.
	SnapGrid geometry.Point

	// NodeExtent is an optional group-level extent, in canvas
	// coordinates, applied to dragged nodes without an extent of their
	// own.
	NodeExtent *geometry.Rect

	AutoPanMargin float64
	AutoPanSpeed  float64
}

// Callbacks are the store-owner notifications. All fire synchronously
// within the originating pointer callback.
type Callbacks struct {
	OnDragStart        func(ids []graph.NodeID)
	OnPositionsChanged func(deltas []graph.Delta)
	OnDragEnd          func(ids []graph.NodeID)
}

// Item is the per-node snapshot taken when a drag commits. It lives for
// exactly one gesture.
type Item struct {
	ID           graph.NodeID
	Start        geometry.Point // parent-relative position at gesture start
	StartAbs     geometry.Point // absolute position at gesture start
	Offset       geometry.Point // pointer-to-node offset at gesture start
	Extent       graph.Extent
	Parent       graph.NodeID
	Origin       geometry.Point
	ExpandParent bool
	Size         geometry.Size

	last geometry.Point // last emitted relative position
}

// Controller is the drag gesture state machine. It reads node state from
// the store and emits position deltas; it never mutates the store.
type Controller struct {
	store *graph.Store
	vp    *viewport.Controller
	opts  Options
	cbs   Callbacks

	state        State
	pressed      graph.NodeID
	items        []*Item
	groupBox     geometry.Rect
	startScreen  geometry.Point
	lastScreen   geometry.Point
	startTime    time.Time
	viewportSize geometry.Size
	panner       *viewport.AutoPanner
}

// NewController creates a drag controller bound to a store and viewport.
func NewController(store *graph.Store, vp *viewport.Controller, opts Options, cbs Callbacks) *Controller {
	c := &Controller{store: store, vp: vp, opts: opts, cbs: cbs}
	c.panner = viewport.NewAutoPanner(opts.AutoPanMargin, opts.AutoPanSpeed, func(d geometry.Point) bool {
		return vp.PanBy(d, c.viewportSize)
	})
	return c
}

// State returns the current gesture phase.
func (c *Controller) State() State {
	return c.state
}

// Items returns the live drag items; nil outside a committed drag.
func (c *Controller) Items() []*Item {
	return c.items
}

// PointerDown arms a drag on the node under the pointer. A gesture
// already in flight is implicitly cancelled.
func (c *Controller) PointerDown(screen geometry.Point, nodeID graph.NodeID, viewportSize geometry.Size, now time.Time) {
	if c.state != StateIdle {
		c.Cancel()
	}
	in, ok := c.store.Get(nodeID)
	if !ok || in.Node.Hidden {
		return
	}
	c.state = StateArmed
	c.pressed = nodeID
	c.startScreen = screen
	c.lastScreen = screen
	c.startTime = now
	c.viewportSize = viewportSize
}

// PointerMove advances the gesture. An armed gesture commits once the
// pointer travels past the distance threshold or the hold threshold
// elapses; a committed gesture recomputes and emits positions.
func (c *Controller) PointerMove(screen geometry.Point, now time.Time) {
	switch c.state {
	case StateArmed:
		moved := geometry.Distance(screen, c.startScreen)
		held := c.opts.HoldThreshold > 0 && now.Sub(c.startTime) >= c.opts.HoldThreshold
		if moved < c.opts.Threshold && !held {
			return
		}
		c.commit()
		if c.state != StateDragging {
			return
		}
		fallthrough
	case StateDragging:
		c.lastScreen = screen
		c.applyMove(screen)
		c.panner.Update(screen, c.viewportSize)
	}
}

// PointerUp commits the final positions and ends the gesture.
func (c *Controller) PointerUp(screen geometry.Point, now time.Time) {
	if c.state == StateDragging {
		c.applyMove(screen)
		c.end()
		return
	}
	c.reset()
}

// Cancel aborts the gesture. Deltas already emitted are not retracted;
// the owner is responsible for any undo.
func (c *Controller) Cancel() {
	if c.state == StateDragging {
		c.end()
		return
	}
	c.reset()
}

// MultiTouch aborts an armed or in-flight drag when a second pointer
// appears, without committing any further position change.
func (c *Controller) MultiTouch() {
	c.Cancel()
}

// Tick runs one auto-pan frame. The host calls this on its
// animation-frame cadence while a gesture is active; when the canvas
// moved under the pointer, positions are re-derived for the unchanged
// screen position.
func (c *Controller) Tick() {
	if c.state != StateDragging {
		return
	}
	if c.panner.Tick() {
		c.applyMove(c.lastScreen)
	}
}

func (c *Controller) end() {
	ids := make([]graph.NodeID, len(c.items))
	for i, it := range c.items {
		ids[i] = it.ID
	}
	c.reset()
	if c.cbs.OnDragEnd != nil {
		c.cbs.OnDragEnd(ids)
	}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.pressed = ""
	c.items = nil
	c.panner.Stop()
}

// commit transitions Armed → Dragging: snapshots the dragged set and
// announces the drag.
func (c *Controller) commit() {
	c.buildItems()
	if len(c.items) == 0 {
		c.reset()
		return
	}
	c.state = StateDragging
	c.panner.Start()
	if c.cbs.OnDragStart != nil {
		ids := make([]graph.NodeID, len(c.items))
		for i, it := range c.items {
			ids[i] = it.ID
		}
		c.cbs.OnDragStart(ids)
	}
}

// buildItems snapshots every selected node plus the pressed node into
// drag items, excluding nodes that must not move: non-draggable nodes
// and nodes whose nearest dragged ancestor already carries them (a
// selected child inside a selected parent moves with the parent and
// must not double-move).
func (c *Controller) buildItems() {
	candidates := make(map[graph.NodeID]*graph.InternalNode)
	for _, in := range c.store.Nodes() {
		if in.Node.Hidden {
			continue
		}
		if in.Node.Selected || in.Node.ID == c.pressed {
			candidates[in.Node.ID] = in
		}
	}

	pointerCanvas := c.vp.ToCanvasPoint(c.startScreen)
	c.items = c.items[:0]
	box := geometry.Box{}
	first := true
	for id, in := range candidates {
		if !in.Node.IsDraggable() {
			continue
		}
		if c.carriedByAncestor(in, candidates) {
			continue
		}
		item := &Item{
			ID:           id,
			Start:        in.Node.Position,
			StartAbs:     in.AbsolutePosition,
			Offset:       pointerCanvas.Sub(in.AbsolutePosition),
			Extent:       in.Node.Extent,
			Parent:       in.Node.Parent,
			Origin:       in.Node.Origin,
			ExpandParent: in.Node.ExpandParent,
			Size:         in.Size(),
			last:         in.Node.Position,
		}
		c.items = append(c.items, item)
		if first {
			box = geometry.RectToBox(in.Rect())
			first = false
		} else {
			box = box.Union(geometry.RectToBox(in.Rect()))
		}
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].ID < c.items[j].ID })
	c.groupBox = geometry.BoxToRect(box)
}

// carriedByAncestor reports whether the node's nearest draggable
// ancestor is itself part of the dragged set.
func (c *Controller) carriedByAncestor(in *graph.InternalNode, candidates map[graph.NodeID]*graph.InternalNode) bool {
	limit := c.store.Len()
	cur := in.Node.Parent
	for depth := 0; cur != "" && depth < limit; depth++ {
		ancestor, ok := c.store.Get(cur)
		if !ok {
			return false
		}
		if _, dragged := candidates[cur]; dragged {
			if ancestor.Node.IsDraggable() {
				return true
			}
		}
		cur = ancestor.Node.Parent
	}
	return false
}

// applyMove computes each item's candidate position for the pointer,
// clamps it, and emits deltas for the items that actually moved.
func (c *Controller) applyMove(screen geometry.Point) {
	pointerCanvas := c.vp.ToCanvasPoint(screen)

	var deltas []graph.Delta
	for _, item := range c.items {
		in, ok := c.store.Get(item.ID)
		if !ok {
			continue
		}

		cand := pointerCanvas.Sub(item.Offset)
		cand = geometry.SnapToGrid(cand, c.opts.SnapGrid.X, c.opts.SnapGrid.Y)

		extent := item.Extent
		if item.Extent.IsUnconstrained() && c.opts.NodeExtent != nil {
			cand = graph.ClampPositionToRect(cand, item.Size, c.effectiveGroupExtent(item))
			extent = graph.Extent{}
		}
		_, rel := c.store.CalculateNodePosition(in, cand, extent)

		if rel != item.last {
			item.last = rel
			pos := rel
			deltas = append(deltas, graph.Delta{NodeID: item.ID, Position: &pos})
		}
	}

	if len(deltas) > 0 && c.cbs.OnPositionsChanged != nil {
		c.cbs.OnPositionsChanged(deltas)
	}
}

// effectiveGroupExtent translates the group extent for one item so the
// item keeps its offset within the selection's bounding box. Without the
// adjustment a single member near the extent edge would over-constrain
// the whole selection's move.
func (c *Controller) effectiveGroupExtent(item *Item) geometry.Rect {
	ext := *c.opts.NodeExtent
	if len(c.items) < 2 {
		return ext
	}
	leadX := item.StartAbs.X - c.groupBox.X
	leadY := item.StartAbs.Y - c.groupBox.Y
	trailX := (c.groupBox.X + c.groupBox.Width) - (item.StartAbs.X + item.Size.Width)
	trailY := (c.groupBox.Y + c.groupBox.Height) - (item.StartAbs.Y + item.Size.Height)
	return geometry.Rect{
		X:      ext.X + leadX,
		Y:      ext.Y + leadY,
		Width:  ext.Width - leadX - trailX,
		Height: ext.Height - leadY - trailY,
	}
}
