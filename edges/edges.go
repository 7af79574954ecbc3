// Package edges maintains the edge collection of a canvas: directed
// links between node handles with idempotent insertion over the
// endpoint tuple.
package edges

import (
	"fmt"

	"github.com/google/uuid"

	"flowcanvas/graph"
)

// Edge is a directed link between two node endpoints, optionally pinned
// to specific handles.
type Edge struct {
	ID           string       `json:"id"`
	Source       graph.NodeID `json:"source"`
	Target       graph.NodeID `json:"target"`
	SourceHandle string       `json:"sourceHandle,omitempty"`
	TargetHandle string       `json:"targetHandle,omitempty"`
}

// endpointKey identifies an edge by its endpoint tuple, which is what
// insertion is idempotent over. A struct key keeps ids containing any
// separator character unambiguous.
type endpointKey struct {
	source       graph.NodeID
	target       graph.NodeID
	sourceHandle string
	targetHandle string
}

func (e Edge) key() endpointKey {
	return endpointKey{e.Source, e.Target, e.SourceHandle, e.TargetHandle}
}

// Set is an ordered edge collection with O(1) duplicate detection.
type Set struct {
	edges []*Edge
	index map[endpointKey]*Edge
}

// NewSet creates an empty edge set.
func NewSet() *Set {
	return &Set{index: make(map[endpointKey]*Edge)}
}

// Add inserts an edge, generating an id when the edge carries none.
// Inserting the same (source, target, sourceHandle, targetHandle) tuple
// twice yields one edge; the existing edge is returned unchanged for a
// duplicate.
func (s *Set) Add(e Edge) *Edge {
	if existing, ok := s.index[e.key()]; ok {
		return existing
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	inserted := &e
	s.edges = append(s.edges, inserted)
	s.index[e.key()] = inserted
	return inserted
}

// Remove deletes an edge by id, reporting whether it existed.
func (s *Set) Remove(id string) bool {
	for i, e := range s.edges {
		if e.ID == id {
			delete(s.index, e.key())
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of edges.
func (s *Set) Len() int {
	return len(s.edges)
}

// Edges returns the edges in insertion order. The slice is shared; do
// not mutate it.
func (s *Set) Edges() []*Edge {
	return s.edges
}

// Validate checks that every edge's endpoints exist in the store,
// returning a structured error per dangling endpoint.
func (s *Set) Validate(store *graph.Store) []*graph.CanvasError {
	var errs []*graph.CanvasError
	for _, e := range s.edges {
		if _, ok := store.Get(e.Source); !ok {
			errs = append(errs, &graph.CanvasError{
				Code:    graph.CodeEdgeEndpointMissing,
				Message: fmt.Sprintf("edge %s references missing source %q", e.ID, e.Source),
				NodeID:  e.Source,
			})
		}
		if _, ok := store.Get(e.Target); !ok {
			errs = append(errs, &graph.CanvasError{
				Code:    graph.CodeEdgeEndpointMissing,
				Message: fmt.Sprintf("edge %s references missing target %q", e.ID, e.Target),
				NodeID:  e.Target,
			})
		}
	}
	return errs
}
