// Package connection implements the connect gesture: a state machine
// that tracks a pointer dragged from a connectable handle, resolves the
// nearest eligible endpoint under it, validates the pair, and reports a
// proposed link on release.
package connection

import (
	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/spatial"
	"flowcanvas/viewport"
)

// Mode selects the structural connection rules.
type Mode int

const (
	// ModeStrict only allows source handles to connect to target
	// handles and vice versa.
	ModeStrict Mode = iota
	// ModeLoose allows any two distinct handles to connect, so
	// single-sided diagrams still resolve a match.
	ModeLoose
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeLoose {
		return "loose"
	}
	return "strict"
}

// Proposal is a candidate connection, always oriented source→target.
type Proposal struct {
	Source       graph.NodeID
	Target       graph.NodeID
	SourceHandle string
	TargetHandle string
}

// State is the live connection gesture state. At most one instance is
// live; it is created on gesture start and cleared on end.
type State struct {
	InProgress bool

	// Valid is nil while no candidate endpoint is resolved.
	Valid *bool

	// From is fixed for the whole gesture.
	FromNode   graph.NodeID
	FromHandle graph.Handle // absolute canvas frame

	// To is updated on every pointer move; zero when unresolved.
	ToNode   graph.NodeID
	ToHandle graph.Handle // absolute canvas frame

	// Pointer is the pointer position in canvas space, for drawing the
	// in-progress line.
	Pointer geometry.Point
}

// Hit describes the element the host's hit test found under a screen
// point.
type Hit struct {
	Node     graph.NodeID
	Handle   string
	Type     graph.HandleType
	IsHandle bool
}

// Options configure a connection Controller.
type Options struct {
	// Radius is the search distance for the nearest-handle fallback
	// when the pointer is not directly over a handle.
	Radius float64

	Mode Mode

	// Validator is the user-supplied predicate over the proposed
	// connection. Nil accepts everything structural rules allow.
	Validator func(Proposal) bool

	// OnError receives configuration errors; defaults to slog.
	OnError graph.ErrorFunc

	AutoPanMargin float64
	AutoPanSpeed  float64
}

// Callbacks are the store-owner notifications, fired synchronously
// within the originating pointer callback.
type Callbacks struct {
	OnConnectStart func(node graph.NodeID, handle string, handleType graph.HandleType)
	OnChange       func(State)
	OnConnect      func(Proposal)
	OnConnectEnd   func()
}

// Controller is the connect gesture state machine.
type Controller struct {
	store *graph.Store
	index *spatial.Index
	vp    *viewport.Controller
	opts  Options
	cbs   Callbacks

	active       bool
	state        State
	fromType     graph.HandleType
	lastScreen   geometry.Point
	lastHit      Hit
	viewportSize geometry.Size
	panner       *viewport.AutoPanner
}

// NewController creates a connection controller. The spatial index must
// be rebuilt by the owner whenever node geometry changes.
func NewController(store *graph.Store, index *spatial.Index, vp *viewport.Controller, opts Options, cbs Callbacks) *Controller {
	if opts.OnError == nil {
		opts.OnError = graph.LogErrors
	}
	c := &Controller{store: store, index: index, vp: vp, opts: opts, cbs: cbs}
	c.panner = viewport.NewAutoPanner(opts.AutoPanMargin, opts.AutoPanSpeed, func(d geometry.Point) bool {
		return vp.PanBy(d, c.viewportSize)
	})
	return c
}

// InProgress reports whether a connect gesture is live.
func (c *Controller) InProgress() bool {
	return c.active
}

// State returns a copy of the live gesture state.
func (c *Controller) State() State {
	return c.state
}

// PointerDown starts a connect gesture from the handle under the
// pointer. typeOverride, when non-nil, wins over the hit's handle type.
// A gesture already in flight is implicitly cancelled.
func (c *Controller) PointerDown(screen geometry.Point, hit Hit, typeOverride *graph.HandleType, viewportSize geometry.Size) {
	if c.active {
		c.Cancel()
	}
	if !hit.IsHandle {
		return
	}
	in, ok := c.store.Get(hit.Node)
	if !ok || !in.Node.IsConnectable() {
		return
	}
	from, ok := findHandle(in, hit.Handle)
	if !ok {
		c.opts.OnError(&graph.CanvasError{
			Code:     graph.CodeHandleNotFound,
			Message:  "connect gesture started on an unknown handle",
			NodeID:   hit.Node,
			HandleID: hit.Handle,
		})
		return
	}

	c.active = true
	c.viewportSize = viewportSize
	c.lastScreen = screen
	c.fromType = hit.Type
	if typeOverride != nil {
		c.fromType = *typeOverride
	}
	c.state = State{
		InProgress: true,
		FromNode:   hit.Node,
		FromHandle: from,
		Pointer:    c.vp.ToCanvasPoint(screen),
	}
	c.panner.Start()

	if c.cbs.OnConnectStart != nil {
		c.cbs.OnConnectStart(hit.Node, from.ID, c.fromType)
	}
	c.emit()
}

// PointerMove resolves the endpoint for the current pointer position:
// a connectable handle directly under the pointer wins outright,
// otherwise the closest indexed handle within the radius. Redundant
// states (same candidate, same validity) are not re-emitted.
func (c *Controller) PointerMove(screen geometry.Point, hit Hit) {
	if !c.active {
		return
	}
	c.lastScreen = screen
	c.lastHit = hit
	c.resolve(screen, hit)
	c.panner.Update(screen, c.viewportSize)
}

// PointerUp completes the gesture: a valid resolved endpoint becomes a
// completed-connection notification, and the end notification fires
// regardless of success.
func (c *Controller) PointerUp(screen geometry.Point, hit Hit) {
	if !c.active {
		return
	}
	c.resolve(screen, hit)

	if c.state.Valid != nil && *c.state.Valid && c.cbs.OnConnect != nil {
		c.cbs.OnConnect(c.proposal(c.state.ToNode, c.state.ToHandle.ID))
	}
	c.finish()
}

// Cancel aborts the gesture; the end notification still fires.
func (c *Controller) Cancel() {
	if !c.active {
		return
	}
	c.finish()
}

// Tick runs one auto-pan frame, re-resolving the endpoint when the
// canvas moved under the unchanged pointer.
func (c *Controller) Tick() {
	if !c.active {
		return
	}
	if c.panner.Tick() {
		c.resolve(c.lastScreen, c.lastHit)
	}
}

func (c *Controller) finish() {
	c.active = false
	c.state = State{}
	c.panner.Stop()
	if c.cbs.OnConnectEnd != nil {
		c.cbs.OnConnectEnd()
	}
}

func (c *Controller) emit() {
	if c.cbs.OnChange != nil {
		c.cbs.OnChange(c.state)
	}
}

// resolve updates the gesture state for a pointer position, suppressing
// the emit when nothing observable changed.
func (c *Controller) resolve(screen geometry.Point, hit Hit) {
	pointer := c.vp.ToCanvasPoint(screen)

	prevNode, prevHandle := c.state.ToNode, c.state.ToHandle.ID
	prevValid := c.state.Valid

	toNode, toHandle, found := c.candidate(pointer, hit)
	c.state.Pointer = pointer
	if !found {
		c.state.ToNode = ""
		c.state.ToHandle = graph.Handle{}
		c.state.Valid = nil
	} else {
		c.state.ToNode = toNode.Node.ID
		c.state.ToHandle = toHandle
		valid := c.isValid(toNode, toHandle)
		c.state.Valid = &valid
	}

	// Thrash suppression: same candidate with the same validity is not
	// re-emitted on every pointer move.
	if c.state.ToNode == prevNode && c.state.ToHandle.ID == prevHandle &&
		boolEqual(c.state.Valid, prevValid) && found {
		return
	}
	c.emit()
}

// candidate finds the endpoint under the pointer: exact handle hits are
// preferred outright, then the nearest indexed handle within the radius.
func (c *Controller) candidate(pointer geometry.Point, hit Hit) (*graph.InternalNode, graph.Handle, bool) {
	if hit.IsHandle {
		if in, ok := c.store.Get(hit.Node); ok && in.Node.IsConnectable() {
			if h, ok := findHandle(in, hit.Handle); ok && !c.isStartHandle(hit.Node, h.ID) {
				return in, h, true
			}
		}
	}

	ref := c.index.Nearest(pointer, c.opts.Radius, func(h spatial.HandleRef) bool {
		if c.isStartHandle(h.Node, h.Handle.ID) {
			return true
		}
		// Strict mode only searches the opposite side; loose mode
		// treats both types as eligible.
		if c.opts.Mode == ModeStrict && h.Handle.Type != c.fromType.Opposite() {
			return true
		}
		return false
	})
	if ref == nil {
		return nil, graph.Handle{}, false
	}
	in, ok := c.store.Get(ref.Node)
	if !ok {
		return nil, graph.Handle{}, false
	}
	return in, ref.Handle, true
}

func (c *Controller) isStartHandle(node graph.NodeID, handle string) bool {
	return node == c.state.FromNode && handle == c.state.FromHandle.ID
}

// isValid applies the structural rules for the mode and then the
// user-supplied predicate.
func (c *Controller) isValid(to *graph.InternalNode, handle graph.Handle) bool {
	if c.isStartHandle(to.Node.ID, handle.ID) {
		return false
	}
	if c.opts.Mode == ModeStrict && handle.Type != c.fromType.Opposite() {
		return false
	}
	if c.opts.Validator != nil {
		return c.opts.Validator(c.proposal(to.Node.ID, handle.ID))
	}
	return true
}

// proposal orients the endpoints source→target regardless of which side
// the gesture started on.
func (c *Controller) proposal(toNode graph.NodeID, toHandle string) Proposal {
	if c.fromType == graph.HandleSource {
		return Proposal{
			Source:       c.state.FromNode,
			Target:       toNode,
			SourceHandle: c.state.FromHandle.ID,
			TargetHandle: toHandle,
		}
	}
	return Proposal{
		Source:       toNode,
		Target:       c.state.FromNode,
		SourceHandle: toHandle,
		TargetHandle: c.state.FromHandle.ID,
	}
}

func findHandle(in *graph.InternalNode, id string) (graph.Handle, bool) {
	for _, h := range in.Handles {
		if h.ID == id {
			return h, true
		}
	}
	return graph.Handle{}, false
}

func boolEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
