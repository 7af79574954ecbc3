package resize

import (
	"math"
	"testing"

	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/viewport"
)

type recorder struct {
	starts  []graph.NodeID
	changes []Change
	ends    []graph.NodeID
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnResizeStart: func(id graph.NodeID) { r.starts = append(r.starts, id) },
		OnResize:      func(ch Change) { r.changes = append(r.changes, ch) },
		OnResizeEnd:   func(id graph.NodeID) { r.ends = append(r.ends, id) },
	}
}

func (r *recorder) last(t *testing.T) Change {
	t.Helper()
	if len(r.changes) == 0 {
		t.Fatal("Expected at least one resize change")
	}
	return r.changes[len(r.changes)-1]
}

func buildStore(nodes ...*graph.Node) *graph.Store {
	s := graph.NewStore()
	s.Rebuild(nodes, graph.RebuildOptions{})
	return s
}

// newTestController wires a controller to an identity viewport so
// screen and canvas coordinates coincide.
func newTestController(store *graph.Store, opts Options, rec *recorder) *Controller {
	return NewController(store, viewport.NewController(viewport.Options{}), opts, rec.callbacks())
}

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func baseNode() *graph.Node {
	return &graph.Node{
		ID:       "a",
		Position: geometry.Point{},
		Size:     geometry.Size{Width: 100, Height: 50},
	}
}

func TestRightControlGrowsWidth(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	if len(rec.starts) != 1 || rec.starts[0] != "a" {
		t.Errorf("Expected one start for node a, got %v", rec.starts)
	}
	c.PointerMove(pt(140, 25))

	ch := rec.last(t)
	if ch.Width != 140 || ch.Height != 50 {
		t.Errorf("Expected size 140x50, got %vx%v", ch.Width, ch.Height)
	}
	if ch.X != 0 || ch.Y != 0 {
		t.Errorf("Expected position unchanged, got (%v, %v)", ch.X, ch.Y)
	}
}

func TestLeftControlAnchorsRightEdge(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(0, 25), "a", Left)
	c.PointerMove(pt(-30, 25))

	ch := rec.last(t)
	if ch.Width != 130 {
		t.Errorf("Expected width 130, got %v", ch.Width)
	}
	if ch.X != -30 {
		t.Errorf("Expected x -30, got %v", ch.X)
	}
	if ch.Y != 0 || ch.Height != 50 {
		t.Errorf("Expected vertical axis untouched, got y=%v h=%v", ch.Y, ch.Height)
	}
}

func TestTopLeftControlAnchorsBothEdges(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(0, 0), "a", TopLeft)
	c.PointerMove(pt(-20, -10))

	ch := rec.last(t)
	if ch.Width != 120 || ch.Height != 60 {
		t.Errorf("Expected size 120x60, got %vx%v", ch.Width, ch.Height)
	}
	if ch.X != -20 || ch.Y != -10 {
		t.Errorf("Expected position (-20, -10), got (%v, %v)", ch.X, ch.Y)
	}
}

func TestMinSizeClamp(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(5, 25))

	if ch := rec.last(t); ch.Width != 10 {
		t.Errorf("Expected width pinned at default minimum 10, got %v", ch.Width)
	}
}

func TestMaxSizeClamp(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{MaxWidth: 120}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(300, 25))

	if ch := rec.last(t); ch.Width != 120 {
		t.Errorf("Expected width pinned at max 120, got %v", ch.Width)
	}
}

func TestParentExtentLimitsGrowth(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 200, Height: 100}}
	child := &graph.Node{
		ID:       "c",
		Parent:   "p",
		Position: geometry.Point{X: 50, Y: 10},
		Size:     geometry.Size{Width: 100, Height: 50},
		Extent:   graph.ParentExtent(),
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(150, 35), "c", Right)
	c.PointerMove(pt(250, 35))

	if ch := rec.last(t); ch.Width != 150 {
		t.Errorf("Expected width limited by parent interior to 150, got %v", ch.Width)
	}
}

func TestParentExtentLimitsAnchoredGrowth(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 200, Height: 100}}
	child := &graph.Node{
		ID:       "c",
		Parent:   "p",
		Position: geometry.Point{X: 50, Y: 10},
		Size:     geometry.Size{Width: 100, Height: 50},
		Extent:   graph.ParentExtent(),
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(50, 35), "c", Left)
	c.PointerMove(pt(-80, 35))

	ch := rec.last(t)
	if ch.Width != 150 {
		t.Errorf("Expected width limited to 150, got %v", ch.Width)
	}
	if ch.X != 0 {
		t.Errorf("Expected left edge pinned at parent boundary, got x %v", ch.X)
	}
}

func TestChildBoundsLimitShrink(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 200, Height: 100}}
	child := &graph.Node{
		ID:       "c",
		Parent:   "p",
		Position: geometry.Point{X: 50, Y: 10},
		Size:     geometry.Size{Width: 100, Height: 50},
		Extent:   graph.ParentExtent(),
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(200, 50), "p", Right)
	c.PointerMove(pt(100, 50))

	if ch := rec.last(t); ch.Width != 150 {
		t.Errorf("Expected shrink stopped at child's right edge, width 150, got %v", ch.Width)
	}
}

func TestAspectRatioLocked(t *testing.T) {
	drags := []geometry.Point{
		{X: 137, Y: 61},
		{X: 103, Y: 190},
		{X: 48, Y: 12},
		{X: 260, Y: 30},
		{X: 90, Y: 44},
	}
	for _, target := range drags {
		rec := &recorder{}
		c := newTestController(buildStore(baseNode()), Options{KeepAspect: true}, rec)

		c.PointerDown(pt(100, 50), "a", BottomRight)
		c.PointerMove(target)

		ch := rec.last(t)
		if math.Abs(ch.Width/ch.Height-2) > 1e-9 {
			t.Errorf("Drag to %v: expected aspect ratio 2, got %v/%v", target, ch.Width, ch.Height)
		}
	}
}

func TestAspectRatioDominantAxisDrives(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{KeepAspect: true}, rec)

	c.PointerDown(pt(100, 50), "a", BottomRight)
	c.PointerMove(pt(180, 55))

	ch := rec.last(t)
	if ch.Width != 180 || ch.Height != 90 {
		t.Errorf("Expected the larger horizontal pull to drive, got %vx%v", ch.Width, ch.Height)
	}
}

func TestAspectRatioEdgeControlMirrors(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{KeepAspect: true}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(160, 25))

	ch := rec.last(t)
	if ch.Width != 160 || ch.Height != 80 {
		t.Errorf("Expected height mirrored from width, got %vx%v", ch.Width, ch.Height)
	}
}

func TestAspectRatioFoldsOtherAxisBounds(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{KeepAspect: true, MinHeight: 40}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(10, 25))

	ch := rec.last(t)
	if ch.Width != 80 || ch.Height != 40 {
		t.Errorf("Expected shrink stopped by height minimum through the ratio, got %vx%v", ch.Width, ch.Height)
	}
}

func TestOriginFractionCorrection(t *testing.T) {
	node := &graph.Node{
		ID:       "a",
		Position: geometry.Point{X: 50, Y: 25},
		Size:     geometry.Size{Width: 100, Height: 50},
		Origin:   geometry.Point{X: 0.5, Y: 0.5},
	}
	rec := &recorder{}
	c := newTestController(buildStore(node), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(140, 25))

	ch := rec.last(t)
	if ch.Width != 140 {
		t.Errorf("Expected width 140, got %v", ch.Width)
	}
	// Top-left stays at (0, 0); the declared position is the center.
	if ch.X != 70 || ch.Y != 25 {
		t.Errorf("Expected declared position (70, 25), got (%v, %v)", ch.X, ch.Y)
	}
}

func TestRotatedNodePointerCorrection(t *testing.T) {
	node := baseNode()
	node.Rotation = 90
	rec := &recorder{}
	c := newTestController(buildStore(node), Options{}, rec)

	// The right-edge control of a node rotated 90 degrees about its
	// center (50, 25) sits at (50, 75) on screen.
	c.PointerDown(pt(50, 75), "a", Right)
	c.PointerMove(pt(50, 115))

	ch := rec.last(t)
	if math.Abs(ch.Width-140) > 1e-9 || math.Abs(ch.Height-50) > 1e-9 {
		t.Errorf("Expected size 140x50 in the unrotated frame, got %vx%v", ch.Width, ch.Height)
	}
}

func TestChildCompensation(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 200, Height: 100}}
	child := &graph.Node{
		ID:           "c",
		Parent:       "p",
		Position:     geometry.Point{X: 30, Y: 20},
		Size:         geometry.Size{Width: 40, Height: 30},
		ExpandParent: true,
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(0, 50), "p", Left)
	c.PointerMove(pt(-10, 50))

	ch := rec.last(t)
	if ch.X != -10 || ch.Width != 210 {
		t.Errorf("Expected left edge at -10 and width 210, got x=%v w=%v", ch.X, ch.Width)
	}
	if len(ch.Deltas) != 1 {
		t.Fatalf("Expected one child compensation, got %d", len(ch.Deltas))
	}
	d := ch.Deltas[0]
	if d.NodeID != "c" || d.Position == nil || d.Position.X != 40 || d.Position.Y != 20 {
		t.Errorf("Expected child c shifted to (40, 20), got %+v", d)
	}
}

func TestExpandParentGrowsParent(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 100, Height: 100}}
	child := &graph.Node{
		ID:           "c",
		Parent:       "p",
		Position:     geometry.Point{X: 10, Y: 10},
		Size:         geometry.Size{Width: 20, Height: 20},
		ExpandParent: true,
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(30, 30), "c", BottomRight)
	c.PointerMove(pt(290, 30))

	ch := rec.last(t)
	if ch.Width != 280 {
		t.Errorf("Expected growth past the parent interior, got width %v", ch.Width)
	}
	if len(ch.Deltas) != 1 {
		t.Fatalf("Expected a parent growth delta, got %d deltas", len(ch.Deltas))
	}
	d := ch.Deltas[0]
	if d.NodeID != "p" || d.Size == nil || *d.Size != (geometry.Size{Width: 290, Height: 100}) {
		t.Errorf("Expected parent grown to 290x100, got %+v", d)
	}
	if d.Position == nil || *d.Position != (geometry.Point{}) {
		t.Errorf("Expected parent position unchanged, got %+v", d.Position)
	}
}

func TestExpandParentShiftsParentLeft(t *testing.T) {
	parent := &graph.Node{ID: "p", Size: geometry.Size{Width: 100, Height: 100}}
	child := &graph.Node{
		ID:           "c",
		Parent:       "p",
		Position:     geometry.Point{X: 10, Y: 20},
		Size:         geometry.Size{Width: 20, Height: 20},
		ExpandParent: true,
	}
	rec := &recorder{}
	c := newTestController(buildStore(parent, child), Options{}, rec)

	c.PointerDown(pt(10, 30), "c", Left)
	c.PointerMove(pt(-40, 30))

	ch := rec.last(t)
	// The parent's top-left absorbs the overflow, so the child sits at
	// the new interior origin.
	if ch.X != 0 || ch.Width != 70 {
		t.Errorf("Expected x=0 w=70 against the shifted parent, got x=%v w=%v", ch.X, ch.Width)
	}
	if len(ch.Deltas) != 1 {
		t.Fatalf("Expected a parent growth delta, got %d deltas", len(ch.Deltas))
	}
	d := ch.Deltas[0]
	if d.NodeID != "p" || d.Position == nil || d.Position.X != -40 {
		t.Errorf("Expected parent shifted to x=-40, got %+v", d)
	}
	if d.Size == nil || *d.Size != (geometry.Size{Width: 140, Height: 100}) {
		t.Errorf("Expected parent grown to 140x100, got %+v", d.Size)
	}
}

func TestShouldResizeVeto(t *testing.T) {
	allow := false
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{
		ShouldResize: func(Change) bool { return allow },
	}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(140, 25))
	if len(rec.changes) != 0 {
		t.Errorf("Expected vetoed step to emit nothing, got %d changes", len(rec.changes))
	}

	allow = true
	c.PointerMove(pt(140, 25))
	if ch := rec.last(t); ch.Width != 140 {
		t.Errorf("Expected the same geometry to emit once allowed, got width %v", ch.Width)
	}
}

func TestEmitOnlyOnChange(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(140, 25))
	c.PointerMove(pt(140, 25))
	c.PointerMove(pt(140, 30)) // off-axis movement changes nothing

	if len(rec.changes) != 1 {
		t.Errorf("Expected exactly one change, got %d", len(rec.changes))
	}
}

func TestPointerUpEndsGesture(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerUp(pt(130, 25))

	if ch := rec.last(t); ch.Width != 130 {
		t.Errorf("Expected the final position to be solved on release, got width %v", ch.Width)
	}
	if len(rec.ends) != 1 || rec.ends[0] != "a" {
		t.Errorf("Expected one end for node a, got %v", rec.ends)
	}
	if c.Resizing() {
		t.Error("Expected gesture to be over after release")
	}
}

func TestCancelKeepsEmittedChanges(t *testing.T) {
	rec := &recorder{}
	c := newTestController(buildStore(baseNode()), Options{}, rec)

	c.PointerDown(pt(100, 25), "a", Right)
	c.PointerMove(pt(140, 25))
	c.Cancel()

	if len(rec.changes) != 1 {
		t.Errorf("Expected the emitted change to survive cancel, got %d", len(rec.changes))
	}
	if len(rec.ends) != 1 {
		t.Errorf("Expected end callback on cancel, got %v", rec.ends)
	}
	if c.Resizing() {
		t.Error("Expected no live gesture after cancel")
	}
}
