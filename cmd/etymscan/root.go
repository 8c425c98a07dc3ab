package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for etymscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "etymscan",
		Short: "Crawler and cross-validator for etymological web databases",
		Long: `etymscan extracts structured records from a paged lexicographic web
database and cross-validates them against a reference dictionary.

The crawl command walks the database's listing pages, expands sub-entries
depth-first, deduplicates by content fingerprint, and checkpoints progress
so interrupted runs resume where they left off.

The validate command looks each record up in the reference dictionary's
search endpoint, first by the record's numeric key, then by headword and
language, and classifies every record into a match status.`,
		Version:       resolveBuildDetails().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .etymscan in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewLanguagesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
