package graph

import "flowcanvas/geometry"

// ClampPositionToRect clamps a node's top-left position so a box of the
// given size stays entirely inside rect. When the box is larger than the
// rect the position pins to the rect's near edge.
func ClampPositionToRect(pos geometry.Point, size geometry.Size, rect geometry.Rect) geometry.Point {
	maxX := rect.X + rect.Width - size.Width
	maxY := rect.Y + rect.Height - size.Height
	if maxX < rect.X {
		maxX = rect.X
	}
	if maxY < rect.Y {
		maxY = rect.Y
	}
	return geometry.Point{
		X: geometry.Clamp(pos.X, rect.X, maxX),
		Y: geometry.Clamp(pos.Y, rect.Y, maxY),
	}
}

// CalculateNodePosition resolves a candidate absolute position for a node
// against an extent. It is the single clamp used for drag moves and
// programmatic moves alike. The returned points are the clamped absolute
// position and the corresponding parent-relative position.
//
// A node whose extent is ExtentParent is clamped to its immediate
// parent's interior unless it also expands the parent; an ExtentRect is
// translated into the parent's absolute frame before clamping. A missing
// parent is reported and leaves the position unclamped.
func (s *Store) CalculateNodePosition(in *InternalNode, abs geometry.Point, extent Extent) (geometry.Point, geometry.Point) {
	size := in.Size()
	parentAbs := geometry.Point{}
	var parent *InternalNode
	if in.Node.Parent != "" {
		p, ok := s.nodes[in.Node.Parent]
		if !ok {
			s.report(errorf(CodeParentNotFound, in.Node.ID,
				"parent %q not found; position left unclamped", in.Node.Parent))
		} else {
			parent = p
			parentAbs = p.AbsolutePosition
		}
	}

	switch extent.Kind {
	case ExtentNone:
		// Unconstrained.
	case ExtentParent:
		if parent != nil && !in.Node.ExpandParent {
			abs = ClampPositionToRect(abs, size, parent.Rect())
		}
	case ExtentRect:
		rect := extent.Rect
		rect.X += parentAbs.X
		rect.Y += parentAbs.Y
		abs = ClampPositionToRect(abs, size, rect)
	}

	rel := abs.Sub(parentAbs).Add(in.Node.OriginOffset(size))
	return abs, rel
}

// ExpandParentRect computes the minimal growth a parent of the given
// size needs to contain the child rect (child given in parent-local
// coordinates). It returns the shift of the parent's own position (the
// parent's top-left moves up/left to absorb negative child coordinates),
// the grown size, and whether any change is needed.
//
// The same math serves measurement-driven expansion and the resize
// controller's expand-parent handling.
func ExpandParentRect(child geometry.Rect, parent geometry.Size) (geometry.Point, geometry.Size, bool) {
	shift := geometry.Point{}
	grown := parent

	if child.X < 0 {
		shift.X = child.X
		grown.Width += -child.X
	}
	if child.Y < 0 {
		shift.Y = child.Y
		grown.Height += -child.Y
	}
	if excess := child.X + child.Width - parent.Width; excess > 0 {
		grown.Width += excess
	}
	if excess := child.Y + child.Height - parent.Height; excess > 0 {
		grown.Height += excess
	}

	changed := shift != (geometry.Point{}) || grown != parent
	return shift, grown, changed
}
