package spatial

import (
	"testing"

	"flowcanvas/geometry"
	"flowcanvas/graph"
)

// handleStore builds a store with two nodes whose handles sit at known
// canvas positions.
func handleStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	s.Rebuild([]*graph.Node{
		{
			ID:       "a",
			Position: geometry.Point{X: 0, Y: 0},
			Size:     geometry.Size{Width: 100, Height: 50},
			Handles: []graph.Handle{
				{ID: "out", Type: graph.HandleSource, Position: geometry.Point{X: 100, Y: 25}, Size: geometry.Size{Width: 6, Height: 6}},
			},
		},
		{
			ID:       "b",
			Position: geometry.Point{X: 300, Y: 0},
			Size:     geometry.Size{Width: 100, Height: 50},
			Handles: []graph.Handle{
				{ID: "in", Type: graph.HandleTarget, Position: geometry.Point{X: 0, Y: 25}, Size: geometry.Size{Width: 6, Height: 6}},
			},
		},
	}, graph.RebuildOptions{})
	return s
}

func TestNearestWithinRadius(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild(handleStore(t))
	if ix.Len() != 2 {
		t.Fatalf("Expected 2 indexed handles, got %d", ix.Len())
	}

	// Near node b's input handle at (300..306, 25..31).
	got := ix.Nearest(geometry.Point{X: 310, Y: 28}, 20, nil)
	if got == nil {
		t.Fatal("Expected a handle within radius")
	}
	if got.Node != "b" || got.Handle.ID != "in" {
		t.Errorf("Nearest = %s/%s, want b/in", got.Node, got.Handle.ID)
	}
}

func TestNearestOutsideRadius(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild(handleStore(t))
	if got := ix.Nearest(geometry.Point{X: 200, Y: 200}, 10, nil); got != nil {
		t.Errorf("Expected nil outside the radius, got %+v", got)
	}
}

func TestNearestSkipFilter(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild(handleStore(t))
	got := ix.Nearest(geometry.Point{X: 103, Y: 28}, 500, func(h HandleRef) bool {
		return h.Node == "a" // exclude the gesture's own start handle
	})
	if got == nil || got.Node != "b" {
		t.Errorf("Skip filter ignored: got %+v", got)
	}
}

func TestNearestTargetTieBreak(t *testing.T) {
	s := graph.NewStore()
	// Two handles equidistant from the probe point, one per type.
	s.Rebuild([]*graph.Node{
		{
			ID:   "n",
			Size: geometry.Size{Width: 100, Height: 100},
			Handles: []graph.Handle{
				{ID: "src", Type: graph.HandleSource, Position: geometry.Point{X: 40, Y: 50}},
				{ID: "dst", Type: graph.HandleTarget, Position: geometry.Point{X: 60, Y: 50}},
			},
		},
	}, graph.RebuildOptions{})
	ix := NewIndex()
	ix.Rebuild(s)

	got := ix.Nearest(geometry.Point{X: 50, Y: 50}, 100, nil)
	if got == nil {
		t.Fatal("Expected a handle")
	}
	if got.Handle.Type != graph.HandleTarget {
		t.Errorf("Tie should prefer the target handle, got %s", got.Handle.Type)
	}
}

func TestRebuildSkipsHiddenAndUnconnectable(t *testing.T) {
	no := false
	s := graph.NewStore()
	s.Rebuild([]*graph.Node{
		{ID: "hidden", Hidden: true, Handles: []graph.Handle{{ID: "h"}}},
		{ID: "locked", Connectable: &no, Handles: []graph.Handle{{ID: "h"}}},
	}, graph.RebuildOptions{})
	ix := NewIndex()
	ix.Rebuild(s)
	if ix.Len() != 0 {
		t.Errorf("Expected empty index, got %d handles", ix.Len())
	}
}
