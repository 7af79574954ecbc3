// Package document reads and writes diagram files: a JSON description
// of nodes and edges that maps onto the graph and edge types.
package document

import (
	"encoding/json"
	"os"

	"flowcanvas/edges"
	"flowcanvas/geometry"
	"flowcanvas/graph"
)

// Handle is the wire form of a connection point.
type Handle struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"` // "source" or "target"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Node is the wire form of a canvas node.
type Node struct {
	ID           string    `json:"id"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Width        float64   `json:"width,omitempty"`
	Height       float64   `json:"height,omitempty"`
	Parent       string    `json:"parent,omitempty"`
	Origin       []float64 `json:"origin,omitempty"` // [fx, fy]
	Extent       string    `json:"extent,omitempty"` // "parent" to clamp to the parent
	ExtentRect   []float64 `json:"extentRect,omitempty"`
	ExpandParent bool      `json:"expandParent,omitempty"`
	Rotation     float64   `json:"rotation,omitempty"`
	ZIndex       int       `json:"zIndex,omitempty"`
	Hidden       bool      `json:"hidden,omitempty"`
	Draggable    *bool     `json:"draggable,omitempty"`
	Connectable  *bool     `json:"connectable,omitempty"`
	Handles      []Handle  `json:"handles,omitempty"`
}

// Document is a diagram file.
type Document struct {
	Nodes []Node       `json:"nodes"`
	Edges []edges.Edge `json:"edges,omitempty"`
}

// Load reads a diagram file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the diagram to a file.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GraphNodes converts the wire nodes into graph nodes, in file order.
func (d *Document) GraphNodes() []*graph.Node {
	out := make([]*graph.Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		out = append(out, n.toGraph())
	}
	return out
}

func (n Node) toGraph() *graph.Node {
	g := &graph.Node{
		ID:           graph.NodeID(n.ID),
		Position:     geometry.Point{X: n.X, Y: n.Y},
		Parent:       graph.NodeID(n.Parent),
		Size:         geometry.Size{Width: n.Width, Height: n.Height},
		ExpandParent: n.ExpandParent,
		Rotation:     n.Rotation,
		ZIndex:       n.ZIndex,
		Hidden:       n.Hidden,
		Draggable:    n.Draggable,
		Connectable:  n.Connectable,
	}
	if len(n.Origin) == 2 {
		g.Origin = geometry.Point{X: n.Origin[0], Y: n.Origin[1]}
	}
	switch {
	case n.Extent == "parent":
		g.Extent = graph.ParentExtent()
	case len(n.ExtentRect) == 4:
		g.Extent = graph.RectExtent(geometry.Rect{
			X:      n.ExtentRect[0],
			Y:      n.ExtentRect[1],
			Width:  n.ExtentRect[2],
			Height: n.ExtentRect[3],
		})
	}
	for _, h := range n.Handles {
		typ := graph.HandleSource
		if h.Type == "target" {
			typ = graph.HandleTarget
		}
		g.Handles = append(g.Handles, graph.Handle{
			ID:       h.ID,
			Type:     typ,
			Position: geometry.Point{X: h.X, Y: h.Y},
			Size:     geometry.Size{Width: h.Width, Height: h.Height},
		})
	}
	return g
}

// FromGraph builds a document back out of graph nodes and an edge set,
// for saving an edited diagram.
func FromGraph(nodes []*graph.Node, set *edges.Set) *Document {
	doc := &Document{Nodes: make([]Node, 0, len(nodes))}
	for _, g := range nodes {
		doc.Nodes = append(doc.Nodes, fromGraphNode(g))
	}
	if set != nil {
		for _, e := range set.Edges() {
			doc.Edges = append(doc.Edges, *e)
		}
	}
	return doc
}

func fromGraphNode(g *graph.Node) Node {
	n := Node{
		ID:           string(g.ID),
		X:            g.Position.X,
		Y:            g.Position.Y,
		Width:        g.Size.Width,
		Height:       g.Size.Height,
		Parent:       string(g.Parent),
		ExpandParent: g.ExpandParent,
		Rotation:     g.Rotation,
		ZIndex:       g.ZIndex,
		Hidden:       g.Hidden,
		Draggable:    g.Draggable,
		Connectable:  g.Connectable,
	}
	if g.Origin != (geometry.Point{}) {
		n.Origin = []float64{g.Origin.X, g.Origin.Y}
	}
	switch g.Extent.Kind {
	case graph.ExtentParent:
		n.Extent = "parent"
	case graph.ExtentRect:
		r := g.Extent.Rect
		n.ExtentRect = []float64{r.X, r.Y, r.Width, r.Height}
	}
	for _, h := range g.Handles {
		n.Handles = append(n.Handles, Handle{
			ID:     h.ID,
			Type:   h.Type.String(),
			X:      h.Position.X,
			Y:      h.Position.Y,
			Width:  h.Size.Width,
			Height: h.Size.Height,
		})
	}
	return n
}

// EdgeSet builds an edge set from the document's edges.
func (d *Document) EdgeSet() *edges.Set {
	set := edges.NewSet()
	for _, e := range d.Edges {
		set.Add(e)
	}
	return set
}

// Validate rebuilds the graph and reports every structural problem in
// the document: dangling parents, missing edge endpoints.
func (d *Document) Validate() []*graph.CanvasError {
	var errs []*graph.CanvasError
	store := graph.NewStore()
	store.SetErrorFunc(func(e *graph.CanvasError) {
		errs = append(errs, e)
	})
	store.Rebuild(d.GraphNodes(), graph.RebuildOptions{})
	errs = append(errs, d.EdgeSet().Validate(store)...)
	return errs
}
