package geometry

import (
	"math"
	"testing"
)

func TestRectBoxRoundTrip(t *testing.T) {
	r := Rect{X: 10, Y: -5, Width: 30, Height: 20}
	got := BoxToRect(RectToBox(r))
	if got != r {
		t.Errorf("Round trip changed rect: got %+v, want %+v", got, r)
	}
}

func TestBoxUnion(t *testing.T) {
	a := Box{X: 0, Y: 0, X2: 10, Y2: 10}
	b := Box{X: 5, Y: -5, X2: 20, Y2: 8}
	u := a.Union(b)
	want := Box{X: 0, Y: -5, X2: 20, Y2: 10}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}, 100},
		{"half", Rect{0, 0, 10, 10}, Rect{5, 0, 10, 10}, 50},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, 0},
		{"touching edge", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, 0},
	}
	for _, tt := range tests {
		if got := tt.a.Overlap(tt.b); got != tt.want {
			t.Errorf("%s: Overlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(Point{X: 10, Y: 10}) {
		t.Error("Expected edges to be inclusive")
	}
	if r.Contains(Point{X: 10.01, Y: 5}) {
		t.Error("Expected point outside to be excluded")
	}
}

func TestClampPoint(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	p := ClampPoint(Point{X: -20, Y: 200}, r)
	if p.X != 0 || p.Y != 50 {
		t.Errorf("ClampPoint = %+v, want {0 50}", p)
	}
}

func TestSnapToGrid(t *testing.T) {
	p := SnapToGrid(Point{X: 17, Y: 23}, 10, 10)
	if p.X != 20 || p.Y != 20 {
		t.Errorf("SnapToGrid = %+v, want {20 20}", p)
	}
	// Zero spacing leaves the axis untouched.
	p = SnapToGrid(Point{X: 17, Y: 23}, 0, 10)
	if p.X != 17 || p.Y != 20 {
		t.Errorf("SnapToGrid with zero x spacing = %+v, want {17 20}", p)
	}
}

func TestRotatePoint(t *testing.T) {
	center := Point{X: 10, Y: 10}
	got := RotatePoint(Point{X: 20, Y: 10}, center, 90)
	if math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("RotatePoint = %+v, want {10 20}", got)
	}
	// Rotating by the inverse angle restores the original point.
	back := RotatePoint(got, center, -90)
	if math.Abs(back.X-20) > 1e-9 || math.Abs(back.Y-10) > 1e-9 {
		t.Errorf("Inverse rotation = %+v, want {20 10}", back)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{0, 0}, Point{3, 4}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
