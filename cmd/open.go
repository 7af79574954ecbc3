package cmd

import (
	"github.com/spf13/cobra"

	"flowcanvas/terminal"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <file.json>",
		Short: "Open a diagram in the interactive canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := terminal.NewApp(args[0], loadConfig())
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}
