package document

import (
	"path/filepath"
	"testing"

	"flowcanvas/edges"
	"flowcanvas/graph"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	doc := &Document{
		Nodes: []Node{
			{ID: "p", Width: 200, Height: 100},
			{
				ID: "c", X: 50, Y: 10, Width: 100, Height: 50,
				Parent: "p", Extent: "parent",
				Origin:  []float64{0.5, 0.5},
				Handles: []Handle{{ID: "out", Type: "source", X: 100, Y: 25}},
			},
		},
		Edges: []edges.Edge{{ID: "e1", Source: "p", Target: "c"}},
	}

	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Nodes) != 2 || len(loaded.Edges) != 1 {
		t.Fatalf("Expected 2 nodes and 1 edge, got %d and %d",
			len(loaded.Nodes), len(loaded.Edges))
	}
	if loaded.Nodes[1].Extent != "parent" {
		t.Errorf("Expected extent 'parent', got %q", loaded.Nodes[1].Extent)
	}
	if loaded.Nodes[1].Handles[0].Type != "source" {
		t.Errorf("Expected source handle, got %q", loaded.Nodes[1].Handles[0].Type)
	}
}

func TestGraphNodesConversion(t *testing.T) {
	doc := &Document{Nodes: []Node{
		{
			ID: "c", X: 50, Y: 10, Width: 100, Height: 50,
			Parent: "p", Extent: "parent",
			Origin:  []float64{0.5, 0.5},
			Handles: []Handle{{ID: "in", Type: "target", X: 0, Y: 25}},
		},
	}}

	nodes := doc.GraphNodes()
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}
	n := nodes[0]
	if n.ID != "c" || n.Parent != "p" {
		t.Errorf("Expected id c under parent p, got %q under %q", n.ID, n.Parent)
	}
	if n.Extent.Kind != graph.ExtentParent {
		t.Errorf("Expected parent extent, got %v", n.Extent.Kind)
	}
	if n.Origin.X != 0.5 || n.Origin.Y != 0.5 {
		t.Errorf("Expected center origin, got %+v", n.Origin)
	}
	if len(n.Handles) != 1 || n.Handles[0].Type != graph.HandleTarget {
		t.Errorf("Expected one target handle, got %+v", n.Handles)
	}
}

func TestFromGraphRoundTrip(t *testing.T) {
	doc := &Document{Nodes: []Node{
		{ID: "a", X: 1, Y: 2, Width: 10, Height: 20, ExtentRect: []float64{0, 0, 500, 500}},
	}}

	back := FromGraph(doc.GraphNodes(), doc.EdgeSet())
	if len(back.Nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(back.Nodes))
	}
	n := back.Nodes[0]
	if n.X != 1 || n.Y != 2 || n.Width != 10 || n.Height != 20 {
		t.Errorf("Expected geometry preserved, got %+v", n)
	}
	if len(n.ExtentRect) != 4 || n.ExtentRect[2] != 500 {
		t.Errorf("Expected extent rect preserved, got %v", n.ExtentRect)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "a", Parent: "missing", Width: 10, Height: 10}},
		Edges: []edges.Edge{{ID: "e1", Source: "a", Target: "ghost"}},
	}

	errs := doc.Validate()
	if len(errs) != 2 {
		t.Fatalf("Expected 2 problems, got %d: %v", len(errs), errs)
	}
	codes := map[string]bool{}
	for _, e := range errs {
		codes[e.Code] = true
	}
	if !codes[graph.CodeParentNotFound] || !codes[graph.CodeEdgeEndpointMissing] {
		t.Errorf("Expected parent and edge endpoint errors, got %v", errs)
	}
}

func TestValidateCleanDocument(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "a", Width: 10, Height: 10}, {ID: "b", Width: 10, Height: 10}},
		Edges: []edges.Edge{{ID: "e1", Source: "a", Target: "b"}},
	}
	if errs := doc.Validate(); len(errs) != 0 {
		t.Errorf("Expected no problems, got %v", errs)
	}
}
