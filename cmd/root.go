// Package cmd implements the flowcanvas command line interface.
package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowcanvas/config"
)

var version = "0.1.0"

var (
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	subtle = color.New(color.FgHiBlack)
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "flowcanvas",
	Short:   "flowcanvas — interactive node diagrams in the terminal",
	Version: version,
}

func init() {
	rootCmd.SetVersionTemplate("flowcanvas {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: XDG config dir)")

	rootCmd.AddCommand(
		openCmd(),
		fitCmd(),
		validateCmd(),
	)
}

func loadConfig() *config.Config {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
