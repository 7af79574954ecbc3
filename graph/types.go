// Package graph owns the node collections and position resolution for the
// flowcanvas interaction core. The Store is the shared ground truth read by
// every gesture controller: it maps externally supplied nodes to resolved
// internal state (absolute position, measured size, z-order, handle
// geometry) across arbitrarily nested parent/child trees.
package graph

import "flowcanvas/geometry"

// NodeID identifies a node. IDs are assigned by the embedding application.
type NodeID string

// HandleType distinguishes the two ends a connection can attach to.
type HandleType int

const (
	HandleSource HandleType = iota
	HandleTarget
)

// String returns the string representation of a HandleType.
func (h HandleType) String() string {
	switch h {
	case HandleSource:
		return "source"
	case HandleTarget:
		return "target"
	default:
		return "unknown"
	}
}

// Opposite returns the other handle type.
func (h HandleType) Opposite() HandleType {
	if h == HandleSource {
		return HandleTarget
	}
	return HandleSource
}

// Handle is a connection point on a node. Position is relative to the
// node's rendered box until the handle is resolved into canvas space.
type Handle struct {
	ID       string
	Type     HandleType
	Position geometry.Point
	Size     geometry.Size
}

// Center returns the center point of the handle.
func (h Handle) Center() geometry.Point {
	return geometry.Point{
		X: h.Position.X + h.Size.Width/2,
		Y: h.Position.Y + h.Size.Height/2,
	}
}

// Node is the externally supplied description of a box on the canvas.
// Position is relative to the parent's origin, or to the canvas when
// the node has no parent. The engine never mutates a Node; all derived
// state lives on InternalNode and all changes are emitted as Deltas.
type Node struct {
	ID       NodeID
	Position geometry.Point
	Parent   NodeID

	// Size is the declared size. It acts as the initial size until the
	// measurement oracle reports real dimensions.
	Size geometry.Size

	// Origin is the anchor point as a fraction of the node's bounding
	// box: {0,0} is the top-left corner (the default), {0.5,0.5} the
	// center. Position refers to this point.
	Origin geometry.Point

	// Extent constrains where the node may be placed.
	Extent Extent

	// ExpandParent grows the parent instead of clamping the node when
	// the node would leave the parent's interior.
	ExpandParent bool

	// Rotation is the node's rotation in degrees around its center.
	Rotation float64

	Selected bool
	Dragging bool
	Hidden   bool

	// ZIndex is the declared z-order. The resolved z-order also folds
	// in ancestor z and the selection boost; see Store.ZOrder.
	ZIndex int

	// Nil means the default (true). The embedding application sets
	// these to lock individual nodes.
	Draggable   *bool
	Connectable *bool
	Deletable   *bool

	// Handles are the declared connection points in node-local
	// coordinates. The measurement oracle may replace them.
	Handles []Handle
}

// IsDraggable reports whether the node may be moved by a drag gesture.
func (n *Node) IsDraggable() bool {
	return n.Draggable == nil || *n.Draggable
}

// IsConnectable reports whether the node's handles accept connections.
func (n *Node) IsConnectable() bool {
	return n.Connectable == nil || *n.Connectable
}

// IsDeletable reports whether the node may be deleted.
func (n *Node) IsDeletable() bool {
	return n.Deletable == nil || *n.Deletable
}

// OriginOffset returns the pixel offset of the anchor point within a box
// of the given size.
func (n *Node) OriginOffset(size geometry.Size) geometry.Point {
	return geometry.Point{X: n.Origin.X * size.Width, Y: n.Origin.Y * size.Height}
}

// InternalNode wraps a Node with engine-resolved state. Instances are
// owned by the Store and rebuilt or updated in place as the node
// collection and measurements change.
type InternalNode struct {
	Node *Node

	// AbsolutePosition is the node's top-left corner in canvas space,
	// with all parent offsets and the origin correction applied.
	AbsolutePosition geometry.Point

	// Measured is the authoritative pixel size reported by the
	// measurement oracle; zero until the first measurement arrives.
	Measured geometry.Size

	// Z is the resolved z-order: max of declared and ancestor z, plus
	// the selection boost when selected.
	Z int

	// Handles are the node's connection points resolved into canvas
	// space.
	Handles []Handle

	// local is the handle geometry the absolute handles were derived
	// from: measured geometry once the oracle has reported, declared
	// geometry before that. Empty until either exists.
	local       []Handle
	handlesSet  bool
	hasMeasured bool
}

// Size returns the measured size when known, falling back to the
// declared size.
func (in *InternalNode) Size() geometry.Size {
	if in.hasMeasured {
		return in.Measured
	}
	return in.Node.Size
}

// Rect returns the node's bounding rect in canvas space.
func (in *InternalNode) Rect() geometry.Rect {
	size := in.Size()
	return geometry.Rect{
		X:      in.AbsolutePosition.X,
		Y:      in.AbsolutePosition.Y,
		Width:  size.Width,
		Height: size.Height,
	}
}

// resolveHandles recomputes the absolute handle geometry from the local
// geometry and the current absolute position.
func (in *InternalNode) resolveHandles() {
	if len(in.local) == 0 {
		in.local = in.Node.Handles
	}
	if len(in.local) == 0 {
		in.Handles = nil
		return
	}
	in.Handles = make([]Handle, len(in.local))
	for i, h := range in.local {
		h.Position = h.Position.Add(in.AbsolutePosition)
		in.Handles[i] = h
	}
	in.handlesSet = true
}

// Delta describes a position and/or size change the engine proposes for a
// node. The embedding application applies deltas back into its canonical
// node collection before the next rebuild; the engine never mutates the
// user's nodes directly.
type Delta struct {
	NodeID   NodeID
	Position *geometry.Point // new parent-relative position, nil if unchanged
	Size     *geometry.Size  // new size, nil if unchanged
}
