// Package terminal is the interactive canvas: it renders the node graph
// on a tcell screen and routes mouse and key events into the drag,
// connection and resize controllers through the live viewport
// transform. Terminal cells are the screen-pixel space.
package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"flowcanvas/config"
	"flowcanvas/connection"
	"flowcanvas/document"
	"flowcanvas/drag"
	"flowcanvas/edges"
	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/resize"
	"flowcanvas/spatial"
	"flowcanvas/viewport"
)

const tickInterval = 33 * time.Millisecond

// App owns the interactive session for one diagram file.
type App struct {
	screen tcell.Screen
	cfg    *config.Config
	path   string

	nodes []*graph.Node
	byID  map[graph.NodeID]*graph.Node
	store *graph.Store
	set   *edges.Set
	index *spatial.Index

	vp   *viewport.Controller
	drag *drag.Controller
	conn *connection.Controller
	rsz  *resize.Controller

	width, height int
	panning       bool
	panLast       geometry.Point
	lastButtons   tcell.ButtonMask
	dirty         bool
	quit          bool
}

// NewApp loads a diagram file and wires the controllers together.
func NewApp(path string, cfg *config.Config) (*App, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:   cfg,
		path:  path,
		nodes: doc.GraphNodes(),
		byID:  make(map[graph.NodeID]*graph.Node),
		store: graph.NewStore(),
		set:   doc.EdgeSet(),
		index: spatial.NewIndex(),
	}
	for _, n := range a.nodes {
		a.byID[n.ID] = n
	}

	vpOpts := viewport.Options{
		MinZoom:       cfg.Viewport.MinZoom,
		MaxZoom:       cfg.Viewport.MaxZoom,
		CoalesceDelay: time.Duration(cfg.Viewport.CoalesceMs) * time.Millisecond,
		// Fires from the debounce timer once a pan or zoom burst
		// settles; wake the loop so the final transform is on screen.
		OnChange: func(viewport.Transform) {
			if a.screen != nil {
				a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		},
	}
	if r := cfg.Viewport.ExtentRect(); r != nil {
		vpOpts.TranslateExtent = *r
	}
	a.vp = viewport.NewController(vpOpts)

	dragOpts := drag.Options{
		Threshold:     cfg.Drag.Threshold,
		HoldThreshold: time.Duration(cfg.Drag.ThresholdMs) * time.Millisecond,
		AutoPanMargin: cfg.AutoPan.Margin,
		AutoPanSpeed:  cfg.AutoPan.Speed,
	}
	if cfg.Grid.Enabled {
		dragOpts.SnapGrid = geometry.Point{X: cfg.Grid.X, Y: cfg.Grid.Y}
	}
	a.drag = drag.NewController(a.store, a.vp, dragOpts, drag.Callbacks{
		OnPositionsChanged: a.applyDeltas,
	})

	mode := connection.ModeStrict
	if cfg.Connection.Mode == "loose" {
		mode = connection.ModeLoose
	}
	a.conn = connection.NewController(a.store, a.index, a.vp, connection.Options{
		Radius:        cfg.Connection.Radius,
		Mode:          mode,
		AutoPanMargin: cfg.AutoPan.Margin,
		AutoPanSpeed:  cfg.AutoPan.Speed,
	}, connection.Callbacks{
		OnConnect: a.addEdge,
	})

	a.rsz = resize.NewController(a.store, a.vp, resize.Options{
		MinWidth:  cfg.Resize.MinWidth,
		MinHeight: cfg.Resize.MinHeight,
		MaxWidth:  cfg.Resize.MaxWidth,
		MaxHeight: cfg.Resize.MaxHeight,
	}, resize.Callbacks{
		OnResize: a.applyResize,
	})

	a.rebuild()
	return a, nil
}

// Run starts the event loop and blocks until the user quits.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.EnableMouse()
	defer screen.Fini()

	a.screen = screen
	a.width, a.height = screen.Size()
	a.fit()

	// The controllers advance on a host-driven cadence; a ticker
	// feeds interrupt events into the blocking poll loop.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				screen.PostEvent(tcell.NewEventInterrupt(nil))
			case <-stop:
				return
			}
		}
	}()

	for !a.quit {
		a.draw()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			a.width, a.height = ev.Size()
			screen.Sync()
		case *tcell.EventKey:
			a.handleKey(ev)
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventInterrupt:
			a.tick()
		}
	}
	return nil
}

func (a *App) viewportSize() geometry.Size {
	// The bottom row is the status bar.
	return geometry.Size{Width: float64(a.width), Height: float64(a.height - 1)}
}

func (a *App) tick() {
	a.vp.Tick(time.Now())
	a.drag.Tick()
	a.conn.Tick()
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape:
		if a.gestureActive() {
			a.cancelGestures()
			return
		}
		a.clearSelection()
	case ev.Key() == tcell.KeyCtrlC:
		a.quit = true
	case ev.Key() == tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.quit = true
		case 'f':
			a.fit()
		case 's':
			a.save()
		}
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pt := geometry.Point{X: float64(x), Y: float64(y)}
	buttons := ev.Buttons()
	prev := a.lastButtons
	a.lastButtons = buttons

	if buttons&tcell.WheelUp != 0 {
		a.vp.ZoomAt(pt, 1.1)
		return
	}
	if buttons&tcell.WheelDown != 0 {
		a.vp.ZoomAt(pt, 1/1.1)
		return
	}

	// Right button pans.
	if buttons&tcell.Button2 != 0 {
		if !a.panning {
			a.panning = true
		} else {
			a.vp.PanBy(pt.Sub(a.panLast), a.viewportSize())
		}
		a.panLast = pt
		return
	}
	a.panning = false

	switch {
	case buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0:
		a.pointerDown(pt)
	case buttons&tcell.Button1 != 0:
		a.pointerMove(pt)
	case prev&tcell.Button1 != 0:
		a.pointerUp(pt)
	}
}

func (a *App) pointerDown(pt geometry.Point) {
	if id, pos, ok := a.resizeControlAt(pt); ok {
		a.rsz.PointerDown(pt, id, pos)
		return
	}
	hit := a.hitAt(pt)
	if hit.IsHandle {
		a.conn.PointerDown(pt, hit, nil, a.viewportSize())
		return
	}
	if hit.Node != "" {
		a.selectNode(hit.Node)
		a.drag.PointerDown(pt, hit.Node, a.viewportSize(), time.Now())
		return
	}
	a.clearSelection()
}

func (a *App) pointerMove(pt geometry.Point) {
	switch {
	case a.rsz.Resizing():
		a.rsz.PointerMove(pt)
	case a.conn.InProgress():
		a.conn.PointerMove(pt, a.hitAt(pt))
	default:
		a.drag.PointerMove(pt, time.Now())
	}
}

func (a *App) pointerUp(pt geometry.Point) {
	switch {
	case a.rsz.Resizing():
		a.rsz.PointerUp(pt)
	case a.conn.InProgress():
		a.conn.PointerUp(pt, a.hitAt(pt))
	default:
		a.drag.PointerUp(pt, time.Now())
	}
}

func (a *App) gestureActive() bool {
	return a.rsz.Resizing() || a.conn.InProgress() || a.drag.State() != drag.StateIdle
}

func (a *App) cancelGestures() {
	a.rsz.Cancel()
	a.conn.Cancel()
	a.drag.Cancel()
}

// hitAt resolves the pointer to a handle or the topmost node under it.
func (a *App) hitAt(pt geometry.Point) connection.Hit {
	if node, handle := a.handleAt(pt); handle != nil {
		return connection.Hit{Node: node, Handle: handle.ID, Type: handle.Type, IsHandle: true}
	}
	if in := a.nodeAt(a.vp.ToCanvasPoint(pt)); in != nil {
		return connection.Hit{Node: in.Node.ID}
	}
	return connection.Hit{}
}

// handleAt finds a handle whose center lands on the pointer's cell.
func (a *App) handleAt(pt geometry.Point) (graph.NodeID, *graph.Handle) {
	for _, in := range a.store.Nodes() {
		if in.Node.Hidden || !in.Node.IsConnectable() {
			continue
		}
		for i := range in.Handles {
			c := a.vp.ToScreenPoint(in.Handles[i].Center())
			if sameCell(c, pt) {
				return in.Node.ID, &in.Handles[i]
			}
		}
	}
	return "", nil
}

// nodeAt returns the topmost visible node containing a canvas point.
func (a *App) nodeAt(canvas geometry.Point) *graph.InternalNode {
	var best *graph.InternalNode
	bestZ := 0
	for _, in := range a.store.Nodes() {
		if in.Node.Hidden || !in.Rect().Contains(canvas) {
			continue
		}
		z := a.store.ZOrder(in.Node.ID)
		if best == nil || z >= bestZ {
			best = in
			bestZ = z
		}
	}
	return best
}

// resizeControlAt maps the pointer onto a corner cell of a selected
// node's border.
func (a *App) resizeControlAt(pt geometry.Point) (graph.NodeID, resize.ControlPosition, bool) {
	x, y := int(pt.X), int(pt.Y)
	for _, in := range a.store.Nodes() {
		if !in.Node.Selected || in.Node.Hidden {
			continue
		}
		r := a.nodeCells(in)
		switch {
		case x == r.x && y == r.y:
			return in.Node.ID, resize.TopLeft, true
		case x == r.x+r.w-1 && y == r.y:
			return in.Node.ID, resize.TopRight, true
		case x == r.x && y == r.y+r.h-1:
			return in.Node.ID, resize.BottomLeft, true
		case x == r.x+r.w-1 && y == r.y+r.h-1:
			return in.Node.ID, resize.BottomRight, true
		}
	}
	return "", 0, false
}

func sameCell(a, b geometry.Point) bool {
	return int(a.X) == int(b.X) && int(a.Y) == int(b.Y)
}

func (a *App) selectNode(id graph.NodeID) {
	n := a.byID[id]
	if n == nil || n.Selected {
		return
	}
	for _, other := range a.nodes {
		other.Selected = false
	}
	n.Selected = true
	a.rebuild()
}

func (a *App) clearSelection() {
	changed := false
	for _, n := range a.nodes {
		if n.Selected {
			n.Selected = false
			changed = true
		}
	}
	if changed {
		a.rebuild()
	}
}

func (a *App) applyDeltas(deltas []graph.Delta) {
	for _, d := range deltas {
		n := a.byID[d.NodeID]
		if n == nil {
			continue
		}
		if d.Position != nil {
			n.Position = *d.Position
		}
		if d.Size != nil {
			n.Size = *d.Size
		}
	}
	a.rebuild()
	a.dirty = true
}

func (a *App) applyResize(ch resize.Change) {
	n := a.byID[ch.NodeID]
	if n == nil {
		return
	}
	n.Position = geometry.Point{X: ch.X, Y: ch.Y}
	n.Size = geometry.Size{Width: ch.Width, Height: ch.Height}
	a.applyDeltas(ch.Deltas)
}

func (a *App) addEdge(p connection.Proposal) {
	a.set.Add(edges.Edge{
		Source:       p.Source,
		Target:       p.Target,
		SourceHandle: p.SourceHandle,
		TargetHandle: p.TargetHandle,
	})
	a.dirty = true
}

func (a *App) rebuild() {
	a.store.Rebuild(a.nodes, graph.RebuildOptions{})
	a.index.Rebuild(a.store)
}

// fit centers the whole diagram in the viewport.
func (a *App) fit() {
	bounds, ok := a.contentBounds()
	if !ok {
		return
	}
	a.vp.FitBounds(bounds, a.viewportSize(), viewport.FitOptions{Padding: 0.1})
}

func (a *App) contentBounds() (geometry.Rect, bool) {
	var box geometry.Box
	found := false
	for _, in := range a.store.Nodes() {
		if in.Node.Hidden {
			continue
		}
		b := geometry.RectToBox(in.Rect())
		if !found {
			box = b
			found = true
		} else {
			box = box.Union(b)
		}
	}
	return geometry.BoxToRect(box), found
}

func (a *App) save() {
	doc := document.FromGraph(a.nodes, a.set)
	if err := doc.Save(a.path); err == nil {
		a.dirty = false
	}
}
