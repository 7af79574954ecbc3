package graph

import (
	"testing"

	"flowcanvas/geometry"
)

func parentChildStore(extent Extent) *Store {
	s, _ := buildStore([]*Node{
		{ID: "p", Position: geometry.Point{X: 100, Y: 100}, Size: geometry.Size{Width: 200, Height: 150}},
		{ID: "c", Parent: "p", Position: geometry.Point{X: 10, Y: 10}, Size: geometry.Size{Width: 40, Height: 30}, Extent: extent},
	})
	return s
}

func TestParentExtentContainment(t *testing.T) {
	s := parentChildStore(ParentExtent())
	c, _ := s.Get("c")
	parentRect := geometry.Rect{X: 100, Y: 100, Width: 200, Height: 150}

	// Any candidate position, including ones far outside the parent,
	// must clamp into the parent's interior.
	candidates := []geometry.Point{
		{X: -1000, Y: -1000},
		{X: 5000, Y: 5000},
		{X: 150, Y: 120},
		{X: 100, Y: 100},
		{X: 299, Y: 249},
	}
	for _, cand := range candidates {
		abs, _ := s.CalculateNodePosition(c, cand, c.Node.Extent)
		rect := geometry.Rect{X: abs.X, Y: abs.Y, Width: 40, Height: 30}
		if !parentRect.ContainsRect(rect) {
			t.Errorf("candidate %+v clamped to %+v which escapes the parent", cand, abs)
		}
	}
}

func TestParentExtentSkippedForExpandParent(t *testing.T) {
	s, _ := buildStore([]*Node{
		{ID: "p", Size: geometry.Size{Width: 100, Height: 100}},
		{ID: "c", Parent: "p", Size: geometry.Size{Width: 10, Height: 10},
			Extent: ParentExtent(), ExpandParent: true},
	})
	c, _ := s.Get("c")
	abs, _ := s.CalculateNodePosition(c, geometry.Point{X: 500, Y: 500}, c.Node.Extent)
	if abs != (geometry.Point{X: 500, Y: 500}) {
		t.Errorf("ExpandParent node should not clamp, got %+v", abs)
	}
}

func TestRectExtentTranslatedToParentFrame(t *testing.T) {
	// The explicit rect is given in the parent's coordinates and must be
	// shifted into the absolute frame before clamping.
	s := parentChildStore(RectExtent(geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}))
	c, _ := s.Get("c")
	abs, rel := s.CalculateNodePosition(c, geometry.Point{X: 500, Y: 500}, c.Node.Extent)
	// Parent at (100,100); extent rect covers (100,100)-(200,200) in
	// absolute terms; a 40x30 node clamps to (160,170).
	if abs != (geometry.Point{X: 160, Y: 170}) {
		t.Errorf("abs = %+v, want {160 170}", abs)
	}
	if rel != (geometry.Point{X: 60, Y: 70}) {
		t.Errorf("rel = %+v, want {60 70}", rel)
	}
}

func TestCalculateNodePositionMissingParent(t *testing.T) {
	var errs []*CanvasError
	s := NewStore()
	s.SetErrorFunc(func(e *CanvasError) { errs = append(errs, e) })
	s.Rebuild([]*Node{
		{ID: "c", Parent: "ghost", Size: geometry.Size{Width: 10, Height: 10}, Extent: ParentExtent()},
	}, RebuildOptions{})
	errs = errs[:0]

	c, _ := s.Get("c")
	abs, _ := s.CalculateNodePosition(c, geometry.Point{X: 77, Y: 88}, c.Node.Extent)
	if abs != (geometry.Point{X: 77, Y: 88}) {
		t.Errorf("Missing parent should degrade to unclamped position, got %+v", abs)
	}
	if len(errs) != 1 || errs[0].Code != CodeParentNotFound {
		t.Errorf("Expected PARENT_NOT_FOUND, got %v", errs)
	}
}

func TestClampPositionToRectOversizedNode(t *testing.T) {
	// A node larger than the rect pins to the near edge instead of
	// oscillating between unsatisfiable bounds.
	pos := ClampPositionToRect(geometry.Point{X: 50, Y: 50}, geometry.Size{Width: 500, Height: 500},
		geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	if pos != (geometry.Point{X: 0, Y: 0}) {
		t.Errorf("Oversized clamp = %+v, want {0 0}", pos)
	}
}

func TestExpandParentRect(t *testing.T) {
	tests := []struct {
		name    string
		child   geometry.Rect
		parent  geometry.Size
		shift   geometry.Point
		grown   geometry.Size
		changed bool
	}{
		{
			name:    "contained",
			child:   geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20},
			parent:  geometry.Size{Width: 100, Height: 100},
			grown:   geometry.Size{Width: 100, Height: 100},
			changed: false,
		},
		{
			name:    "overflow right and bottom",
			child:   geometry.Rect{X: 90, Y: 95, Width: 20, Height: 20},
			parent:  geometry.Size{Width: 100, Height: 100},
			grown:   geometry.Size{Width: 110, Height: 115},
			changed: true,
		},
		{
			name:    "overflow top-left shifts the parent",
			child:   geometry.Rect{X: -15, Y: -5, Width: 20, Height: 20},
			parent:  geometry.Size{Width: 100, Height: 100},
			shift:   geometry.Point{X: -15, Y: -5},
			grown:   geometry.Size{Width: 115, Height: 105},
			changed: true,
		},
	}
	for _, tt := range tests {
		shift, grown, changed := ExpandParentRect(tt.child, tt.parent)
		if shift != tt.shift || grown != tt.grown || changed != tt.changed {
			t.Errorf("%s: got shift=%+v grown=%+v changed=%v, want shift=%+v grown=%+v changed=%v",
				tt.name, shift, grown, changed, tt.shift, tt.grown, tt.changed)
		}
	}
}
