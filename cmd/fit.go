package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowcanvas/document"
	"flowcanvas/geometry"
	"flowcanvas/graph"
	"flowcanvas/viewport"
)

func fitCmd() *cobra.Command {
	var width, height float64
	var padding float64

	cmd := &cobra.Command{
		Use:   "fit <file.json>",
		Short: "Print the transform that fits a diagram into a viewport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			cfg := loadConfig()

			store := graph.NewStore()
			store.Rebuild(doc.GraphNodes(), graph.RebuildOptions{})

			bounds, ok := diagramBounds(store)
			if !ok {
				return fmt.Errorf("%s: no visible nodes to fit", args[0])
			}

			vp := viewport.NewController(viewport.Options{
				MinZoom: cfg.Viewport.MinZoom,
				MaxZoom: cfg.Viewport.MaxZoom,
			})
			vp.FitBounds(bounds, geometry.Size{Width: width, Height: height}, viewport.FitOptions{
				Padding: padding,
			})

			t := vp.Transform()
			subtle.Printf("  bounds %gx%g at (%g, %g), viewport %gx%g\n",
				bounds.Width, bounds.Height, bounds.X, bounds.Y, width, height)
			fmt.Printf("  x=%.2f y=%.2f zoom=%.2f\n", t.X, t.Y, t.Zoom)
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 1200, "Viewport width")
	cmd.Flags().Float64Var(&height, "height", 800, "Viewport height")
	cmd.Flags().Float64Var(&padding, "padding", 0, "Padding fraction around the bounds")
	return cmd
}

// diagramBounds is the union of all visible node rects.
func diagramBounds(store *graph.Store) (geometry.Rect, bool) {
	var box geometry.Box
	found := false
	for _, in := range store.Nodes() {
		if in.Node.Hidden {
			continue
		}
		b := geometry.RectToBox(in.Rect())
		if !found {
			box = b
			found = true
		} else {
			box = box.Union(b)
		}
	}
	return geometry.BoxToRect(box), found
}
