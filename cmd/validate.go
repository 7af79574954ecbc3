package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowcanvas/document"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Check a diagram for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}

			errs := doc.Validate()
			if len(errs) == 0 {
				good.Printf("  ok: %d nodes, %d edges\n", len(doc.Nodes), len(doc.Edges))
				return nil
			}

			for _, e := range errs {
				bad.Printf("  %s", e.Code)
				fmt.Printf("  %s\n", e.Message)
			}
			return fmt.Errorf("%d problem(s) found", len(errs))
		},
	}
}
