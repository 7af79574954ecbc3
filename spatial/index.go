// Package spatial maintains an r-tree over the absolute handle
// rectangles of every connectable node, backing the connection
// controller's nearest-handle searches.
package spatial

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"flowcanvas/geometry"
	"flowcanvas/graph"
)

// HandleRef identifies one handle of one node together with its resolved
// canvas-space rectangle.
type HandleRef struct {
	Node   graph.NodeID
	Handle graph.Handle
	Rect   geometry.Rect
}

// Center returns the center of the handle's rectangle.
func (h HandleRef) Center() geometry.Point {
	return h.Rect.Center()
}

type entry struct {
	ref    HandleRef
	bounds rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.bounds
}

// Index is a spatial index over handle rectangles. Rebuild it whenever
// node geometry changes; queries are read-only.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)}
}

// Rebuild repopulates the index from the store, skipping hidden and
// non-connectable nodes.
func (ix *Index) Rebuild(store *graph.Store) {
	ix.tree = rtreego.NewTree(2, 25, 50)
	ix.size = 0
	for _, in := range store.Nodes() {
		if in.Node.Hidden || !in.Node.IsConnectable() {
			continue
		}
		for _, h := range in.Handles {
			rect := geometry.Rect{
				X:      h.Position.X,
				Y:      h.Position.Y,
				Width:  h.Size.Width,
				Height: h.Size.Height,
			}
			bounds, err := rtreego.NewRect(
				rtreego.Point{rect.X, rect.Y},
				[]float64{positive(rect.Width), positive(rect.Height)},
			)
			if err != nil {
				continue
			}
			ix.tree.Insert(&entry{
				ref:    HandleRef{Node: in.Node.ID, Handle: h, Rect: rect},
				bounds: bounds,
			})
			ix.size++
		}
	}
}

// positive keeps degenerate handle rects indexable; the r-tree rejects
// non-positive edge lengths.
func positive(v float64) float64 {
	if v <= 0 {
		return 1e-9
	}
	return v
}

// Len returns the number of indexed handles.
func (ix *Index) Len() int {
	return ix.size
}

// neighborhood is how many r-tree candidates a nearest query inspects
// before measuring exact center distances.
const neighborhood = 16

// Nearest returns the handle whose center is closest to p within the
// search radius, or nil when none qualifies. Handles for which skip
// returns true are ignored. Among candidates at equal distance a
// target-typed handle wins, matching the common diagram shape of many
// sources and few targets.
func (ix *Index) Nearest(p geometry.Point, radius float64, skip func(HandleRef) bool) *HandleRef {
	if ix.size == 0 || radius <= 0 {
		return nil
	}

	candidates := ix.tree.NearestNeighbors(neighborhood, rtreego.Point{p.X, p.Y})

	var best *HandleRef
	bestDist := math.Inf(1)
	const tie = 1e-9
	for _, c := range candidates {
		e, ok := c.(*entry)
		if !ok || e == nil {
			continue
		}
		if skip != nil && skip(e.ref) {
			continue
		}
		d := geometry.Distance(p, e.ref.Center())
		if d > radius {
			continue
		}
		switch {
		case d < bestDist-tie:
			ref := e.ref
			best = &ref
			bestDist = d
		case math.Abs(d-bestDist) <= tie && best != nil &&
			best.Handle.Type != graph.HandleTarget && e.ref.Handle.Type == graph.HandleTarget:
			ref := e.ref
			best = &ref
		}
	}
	return best
}
