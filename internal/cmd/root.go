// Package cmd wires the viewport CLI: run, compare, fix, login, profiles.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for viewport
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewport",
		Short: "Responsive design regression testing for web pages",
		Long: `Viewport captures a web page across device viewports, has an AI agent
evaluate the responsive design of each capture, and writes Markdown
reports into timestamped run directories.

It can also dispatch the agent to fix the reported issues in a local
working copy and re-evaluate, producing a before/after comparison.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCompareCommand())
	cmd.AddCommand(NewFixCommand())
	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewProfilesCommand())

	return cmd
}
