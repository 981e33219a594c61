// Package cli wires the dbtrawl commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbtrawl",
	Short: "Sensitive-data audit for relational databases",
	Long: "Scans MySQL and SQLite datasources for columns likely to hold " +
		"personally-identifiable or otherwise sensitive values, audits " +
		"user-privilege exposure, and writes one spreadsheet report per " +
		"datasource.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
