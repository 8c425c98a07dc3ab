package main

import (
	"fmt"
	"strings"

	"github.com/etymscan/etymscan/internal/language"
	"github.com/spf13/cobra"
)

// NewLanguagesCmd creates the languages command.
func NewLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "Print the language mapping table",
		Long: `Languages prints the table used to decide whether a source-side
language abbreviation and a reference-side language name denote the same
language. With --languages it prints a custom table instead of the
built-in one, validating it in the process.`,
		Args: cobra.NoArgs,
		RunE: runLanguagesCmd,
	}

	cmd.Flags().String("languages", "",
		"YAML file replacing the built-in language mapping table")

	return cmd
}

// runLanguagesCmd executes the languages command.
func runLanguagesCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("languages")
	if err != nil {
		return err
	}

	entries := language.BuiltinEntries()
	if path != "" {
		entries, err = language.LoadEntries(path)
		if err != nil {
			return err
		}
		// Surface table errors (duplicate variants, empty names) here
		// rather than at validation time.
		if _, err := language.NewMapper(entries); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %-20s %s\n", "CANONICAL", "ABBREVIATIONS", "VARIANTS")
	for _, e := range entries {
		fmt.Fprintf(out, "%-16s %-20s %s\n",
			e.Canonical,
			strings.Join(e.Abbreviations, ", "),
			strings.Join(e.Variants, ", "),
		)
	}
	return nil
}
