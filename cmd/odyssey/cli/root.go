// Package cli holds the odyssey command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "odyssey",
		Short: "Multi-company ERP with group consolidation",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newHierarchyCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newConsolCommand())

	return rootCmd
}
