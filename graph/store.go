package graph

import "flowcanvas/geometry"

// SelectionBoost is added to a node's resolved z-order while it is
// selected, so a selected node and its descendants render above all
// unselected siblings.
const SelectionBoost = 1000

// Store is the node graph ground truth: a flat lookup of every node's
// resolved internal state plus a parent→children index. It is an
// explicitly owned object constructed by the embedding application;
// construct a fresh one per canvas (or per test).
//
// The Store is mutated only by Rebuild and ApplyMeasurement; the gesture
// controllers read from it and emit Deltas.
type Store struct {
	nodes    map[NodeID]*InternalNode
	children map[NodeID]map[NodeID]*InternalNode
	onError  ErrorFunc
}

// NewStore creates an empty store reporting errors through slog.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[NodeID]*InternalNode),
		children: make(map[NodeID]map[NodeID]*InternalNode),
		onError:  LogErrors,
	}
}

// SetErrorFunc routes configuration errors to f instead of the default
// slog reporter. A nil f silences them.
func (s *Store) SetErrorFunc(f ErrorFunc) {
	s.onError = f
}

func (s *Store) report(e *CanvasError) {
	if s.onError != nil {
		s.onError(e)
	}
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Get returns the internal node for an id.
func (s *Store) Get(id NodeID) (*InternalNode, bool) {
	in, ok := s.nodes[id]
	return in, ok
}

// Nodes returns every internal node. Order is unspecified.
func (s *Store) Nodes() []*InternalNode {
	out := make([]*InternalNode, 0, len(s.nodes))
	for _, in := range s.nodes {
		out = append(out, in)
	}
	return out
}

// Children returns the direct children of a node. Order is unspecified.
func (s *Store) Children(id NodeID) []*InternalNode {
	kids := s.children[id]
	if len(kids) == 0 {
		return nil
	}
	out := make([]*InternalNode, 0, len(kids))
	for _, in := range kids {
		out = append(out, in)
	}
	return out
}

// RebuildOptions control the equality fast path during Rebuild.
type RebuildOptions struct {
	// Unchanged asserts that the source Node for an id is the same
	// object, with no size- or position-affecting field changed, as on
	// the previous rebuild. The store then reuses the prior internal
	// node instead of recomputing it. Callers must only assert this
	// when it is actually true.
	Unchanged func(NodeID) bool

	// NewlyMeasured marks nodes whose measurement arrived since the
	// previous rebuild; they are recomputed even when Unchanged.
	NewlyMeasured func(NodeID) bool
}

// Rebuild replaces the store's contents from the supplied node
// collection. Parents must precede their children in the collection for
// nested positions to resolve; a node whose parent has not been seen yet
// is treated as a root for this pass and a warning is reported.
func (s *Store) Rebuild(nodes []*Node, opts RebuildOptions) {
	prev := s.nodes
	s.nodes = make(map[NodeID]*InternalNode, len(nodes))
	s.children = make(map[NodeID]map[NodeID]*InternalNode)

	for _, node := range nodes {
		in := s.resolveNode(node, prev, opts)
		s.nodes[node.ID] = in
		// A self-parented node is already treated as a root during
		// resolution; indexing it as its own child would make every
		// descendant walk over it loop.
		if node.Parent != "" && node.Parent != node.ID {
			if _, ok := s.nodes[node.Parent]; ok {
				s.indexChild(node.Parent, in)
			}
		}
	}
}

// resolveNode produces the internal node for one source node, reusing
// the previous internal node when the caller asserts equality.
func (s *Store) resolveNode(node *Node, prev map[NodeID]*InternalNode, opts RebuildOptions) *InternalNode {
	if opts.Unchanged != nil && opts.Unchanged(node.ID) {
		newlyMeasured := opts.NewlyMeasured != nil && opts.NewlyMeasured(node.ID)
		if in, ok := prev[node.ID]; ok && !newlyMeasured {
			return in
		}
	}

	in := &InternalNode{Node: node}
	if old, ok := prev[node.ID]; ok {
		// Measurements survive rebuilds; only the oracle refreshes them.
		in.Measured = old.Measured
		in.hasMeasured = old.hasMeasured
		in.local = old.local
	}

	parent := s.lookupParent(node)
	base := geometry.Point{}
	parentZ := 0
	if parent != nil {
		base = parent.AbsolutePosition
		parentZ = parent.Z
	}
	in.AbsolutePosition = base.Add(node.Position).Sub(node.OriginOffset(in.Size()))
	in.Z = resolveZ(node, parentZ)
	in.resolveHandles()
	return in
}

// lookupParent finds a node's parent among the nodes resolved so far in
// the current pass, reporting a warning when the reference dangles.
func (s *Store) lookupParent(node *Node) *InternalNode {
	if node.Parent == "" {
		return nil
	}
	parent, ok := s.nodes[node.Parent]
	if !ok {
		s.report(errorf(CodeParentNotFound, node.ID,
			"parent %q not found; treating node as a root", node.Parent))
		return nil
	}
	return parent
}

func (s *Store) indexChild(parent NodeID, in *InternalNode) {
	kids := s.children[parent]
	if kids == nil {
		kids = make(map[NodeID]*InternalNode)
		s.children[parent] = kids
	}
	kids[in.Node.ID] = in
}

// resolveZ computes a node's z-order from its declared z and the
// resolved z of its parent chain.
func resolveZ(node *Node, parentZ int) int {
	z := node.ZIndex
	if parentZ > z {
		z = parentZ
	}
	if node.Selected {
		z += SelectionBoost
	}
	return z
}

// ZOrder returns the resolved z-order for a node, zero for unknown ids.
func (s *Store) ZOrder(id NodeID) int {
	in, ok := s.nodes[id]
	if !ok {
		return 0
	}
	return in.Z
}

// AbsolutePosition re-derives a node's absolute position by walking its
// ancestor chain and accumulating the declared offsets. It is a pure
// function of the current store contents; resolving twice without a
// mutation in between yields the same result.
//
// The walk is depth-bounded by the store size so a cyclic parent chain
// degrades to a reported error instead of unbounded recursion.
func (s *Store) AbsolutePosition(id NodeID) (geometry.Point, bool) {
	in, ok := s.nodes[id]
	if !ok {
		s.report(errorf(CodeNodeNotFound, id, "node %q not in store", id))
		return geometry.Point{}, false
	}

	pos := in.Node.Position.Sub(in.Node.OriginOffset(in.Size()))
	limit := len(s.nodes)
	depth := 0
	for cur := in.Node.Parent; cur != ""; {
		depth++
		if depth > limit {
			s.report(errorf(CodeGraphCycle, id, "parent chain of %q does not terminate", id))
			return pos, false
		}
		parent, ok := s.nodes[cur]
		if !ok {
			s.report(errorf(CodeParentNotFound, id, "ancestor %q not found", cur))
			break
		}
		pos = pos.Add(parent.Node.Position).Sub(parent.Node.OriginOffset(parent.Size()))
		cur = parent.Node.Parent
	}
	return pos, true
}

// ApplyMeasurement records the pixel size and handle geometry the
// measurement oracle reported for a node. The node's absolute position
// and handle bounds are recomputed when the size changed or the handle
// bounds were previously unset, and every descendant is re-resolved.
//
// When the node is flagged ExpandParent and its geometry changed, the
// minimal parent growth needed to contain it is returned as a Delta for
// the caller to apply; the store never mutates the user's nodes.
func (s *Store) ApplyMeasurement(id NodeID, size geometry.Size, handles []Handle) []Delta {
	in, ok := s.nodes[id]
	if !ok {
		s.report(errorf(CodeNodeNotFound, id, "measurement for unknown node %q", id))
		return nil
	}

	sizeChanged := !in.hasMeasured || in.Measured != size
	in.Measured = size
	in.hasMeasured = true
	if handles != nil {
		in.local = handles
	}

	if !sizeChanged && in.handlesSet {
		return nil
	}

	oldPos := in.AbsolutePosition
	s.reresolve(in)
	positionChanged := in.AbsolutePosition != oldPos

	if in.Node.ExpandParent && (sizeChanged || positionChanged) {
		if parent, ok := s.nodes[in.Node.Parent]; ok {
			child := geometry.Rect{
				X:      in.AbsolutePosition.X - parent.AbsolutePosition.X,
				Y:      in.AbsolutePosition.Y - parent.AbsolutePosition.Y,
				Width:  size.Width,
				Height: size.Height,
			}
			if shift, grown, changed := ExpandParentRect(child, parent.Size()); changed {
				newPos := parent.Node.Position.Add(shift)
				return []Delta{{
					NodeID:   parent.Node.ID,
					Position: &newPos,
					Size:     &grown,
				}}
			}
		}
	}
	return nil
}

// reresolve recomputes a node's absolute position and handle geometry
// from its parent, then recurses into its descendants.
func (s *Store) reresolve(in *InternalNode) {
	base := geometry.Point{}
	if parent, ok := s.nodes[in.Node.Parent]; ok && in.Node.Parent != "" && in.Node.Parent != in.Node.ID {
		base = parent.AbsolutePosition
	}
	in.AbsolutePosition = base.Add(in.Node.Position).Sub(in.Node.OriginOffset(in.Size()))
	in.resolveHandles()

	for _, child := range s.children[in.Node.ID] {
		s.reresolve(child)
	}
}
