package terminal

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"

	"flowcanvas/geometry"
	"flowcanvas/graph"
)

// BoxStyle defines the characters used to draw a node.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

var (
	// DefaultBoxStyle uses rounded corners.
	DefaultBoxStyle = BoxStyle{
		TopLeft:     '╭',
		TopRight:    '╮',
		BottomLeft:  '╰',
		BottomRight: '╯',
		Horizontal:  '─',
		Vertical:    '│',
	}

	// SelectedBoxStyle uses double-line characters.
	SelectedBoxStyle = BoxStyle{
		TopLeft:     '╔',
		TopRight:    '╗',
		BottomLeft:  '╚',
		BottomRight: '╝',
		Horizontal:  '═',
		Vertical:    '║',
	}
)

var (
	nodeStyle     = tcell.StyleDefault
	selectedStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	handleStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	edgeStyle     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	liveStyle     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	invalidStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	statusStyle   = tcell.StyleDefault.Reverse(true)
)

// cellRect is a node's footprint in screen cells.
type cellRect struct {
	x, y, w, h int
}

func (a *App) nodeCells(in *graph.InternalNode) cellRect {
	t := a.vp.Transform()
	tl := t.Apply(in.AbsolutePosition)
	size := in.Size()
	return cellRect{
		x: int(math.Round(tl.X)),
		y: int(math.Round(tl.Y)),
		w: int(math.Round(size.Width * t.Zoom)),
		h: int(math.Round(size.Height * t.Zoom)),
	}
}

func (a *App) draw() {
	a.screen.Clear()

	for _, e := range a.set.Edges() {
		a.drawEdge(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	}

	nodes := a.store.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		return a.store.ZOrder(nodes[i].Node.ID) < a.store.ZOrder(nodes[j].Node.ID)
	})
	for _, in := range nodes {
		if in.Node.Hidden {
			continue
		}
		a.drawNode(in)
	}

	if a.conn.InProgress() {
		a.drawLiveConnection()
	}

	a.drawStatus()
	a.screen.Show()
}

func (a *App) drawNode(in *graph.InternalNode) {
	r := a.nodeCells(in)
	if r.w < 2 || r.h < 2 {
		return
	}

	box := DefaultBoxStyle
	style := nodeStyle
	if in.Node.Selected {
		box = SelectedBoxStyle
		style = selectedStyle
	}

	for x := r.x + 1; x < r.x+r.w-1; x++ {
		a.set1(x, r.y, box.Horizontal, style)
		a.set1(x, r.y+r.h-1, box.Horizontal, style)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		a.set1(r.x, y, box.Vertical, style)
		a.set1(r.x+r.w-1, y, box.Vertical, style)
	}
	a.set1(r.x, r.y, box.TopLeft, style)
	a.set1(r.x+r.w-1, r.y, box.TopRight, style)
	a.set1(r.x, r.y+r.h-1, box.BottomLeft, style)
	a.set1(r.x+r.w-1, r.y+r.h-1, box.BottomRight, style)

	// Interior fill so drags on the body hit-test against something
	// visible, plus the node's label.
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		for x := r.x + 1; x < r.x+r.w-1; x++ {
			a.set1(x, y, ' ', style)
		}
	}
	label := string(in.Node.ID)
	for i, ch := range label {
		x := r.x + 1 + i
		if x >= r.x+r.w-1 {
			break
		}
		a.set1(x, r.y+1, ch, style)
	}

	for _, h := range in.Handles {
		c := a.vp.ToScreenPoint(h.Center())
		mark := '◦'
		if h.Type == graph.HandleSource {
			mark = '●'
		}
		a.set1(int(math.Round(c.X)), int(math.Round(c.Y)), mark, handleStyle)
	}
}

func (a *App) drawEdge(src graph.NodeID, srcHandle string, dst graph.NodeID, dstHandle string) {
	from, ok := a.anchor(src, srcHandle)
	if !ok {
		return
	}
	to, ok := a.anchor(dst, dstHandle)
	if !ok {
		return
	}
	a.drawLine(from, to, edgeStyle)
}

// anchor resolves an edge endpoint to a screen point: the named handle's
// center, or the node's center when no handle is named.
func (a *App) anchor(id graph.NodeID, handle string) (geometry.Point, bool) {
	in, ok := a.store.Get(id)
	if !ok || in.Node.Hidden {
		return geometry.Point{}, false
	}
	if handle != "" {
		for _, h := range in.Handles {
			if h.ID == handle {
				return a.vp.ToScreenPoint(h.Center()), true
			}
		}
	}
	return a.vp.ToScreenPoint(in.Rect().Center()), true
}

func (a *App) drawLiveConnection() {
	st := a.conn.State()
	from, ok := a.anchor(st.FromNode, st.FromHandle.ID)
	if !ok {
		return
	}
	to := a.vp.ToScreenPoint(st.Pointer)
	style := liveStyle
	if st.Valid != nil && !*st.Valid {
		style = invalidStyle
	}
	a.drawLine(from, to, style)
}

// drawLine walks screen cells from a to b, leaving node borders intact
// at the endpoints.
func (a *App) drawLine(from, to geometry.Point, style tcell.Style) {
	x0, y0 := int(math.Round(from.X)), int(math.Round(from.Y))
	x1, y1 := int(math.Round(to.X)), int(math.Round(to.Y))

	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		return
	}
	for i := 1; i < steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		a.set1(x, y, '·', style)
	}
}

func (a *App) drawStatus() {
	t := a.vp.Transform()
	mode := "idle"
	switch {
	case a.conn.InProgress():
		mode = "connect"
	case a.rsz.Resizing():
		mode = "resize"
	default:
		mode = a.drag.State().String()
	}
	dirty := ""
	if a.dirty {
		dirty = " [+]"
	}
	line := fmt.Sprintf(" %s%s  zoom %.2f  %s  (s)ave (f)it (q)uit", a.path, dirty, t.Zoom, mode)
	for x := 0; x < a.width; x++ {
		ch := ' '
		if x < len(line) {
			ch = rune(line[x])
		}
		a.set1(x, a.height-1, ch, statusStyle)
	}
}

func (a *App) set1(x, y int, ch rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	a.screen.SetContent(x, y, ch, nil, style)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
