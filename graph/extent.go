package graph

import "flowcanvas/geometry"

// ExtentKind discriminates the three shapes a movement extent can take.
type ExtentKind int

const (
	// ExtentNone leaves the node unconstrained.
	ExtentNone ExtentKind = iota
	// ExtentParent clamps the node to its parent's interior.
	ExtentParent
	// ExtentRect clamps the node to an explicit rectangle given in the
	// parent's coordinate frame.
	ExtentRect
)

// String returns the string representation of an ExtentKind.
func (k ExtentKind) String() string {
	switch k {
	case ExtentNone:
		return "none"
	case ExtentParent:
		return "parent"
	case ExtentRect:
		return "rect"
	default:
		return "unknown"
	}
}

// Extent is a tagged variant describing a node's positional constraint.
// The zero value is unconstrained.
type Extent struct {
	Kind ExtentKind
	Rect geometry.Rect // only meaningful for ExtentRect
}

// ParentExtent returns an extent clamping the node to its parent.
func ParentExtent() Extent {
	return Extent{Kind: ExtentParent}
}

// RectExtent returns an extent clamping the node to an explicit rect.
func RectExtent(r geometry.Rect) Extent {
	return Extent{Kind: ExtentRect, Rect: r}
}

// IsUnconstrained reports whether the extent imposes no constraint.
func (e Extent) IsUnconstrained() bool {
	return e.Kind == ExtentNone
}
