package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "closebooks",
		Short:   "Double-entry accounting for closing the books",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "closebooks.yaml", "path to the config file")

	rootCmd.AddCommand(newInitCommand(&configPath))
	rootCmd.AddCommand(newAccountCommand(&configPath))
	rootCmd.AddCommand(newJournalCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))
	rootCmd.AddCommand(newBudgetCommand(&configPath))
	rootCmd.AddCommand(newCloseCommand(&configPath))

	return rootCmd
}
