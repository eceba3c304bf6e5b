// Package cli wires the dbshift commands. Commands load the project
// config, scan the migrations directory, and consult the applied-
// migration ledger; none of them execute DDL.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/velora-dev/dbshift/internal/logging"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

var rootCmd = &cobra.Command{
	Use:   "dbshift",
	Short: "Schema migration planner and ledger",
	Long: `dbshift tracks database schema evolution as versioned, dependency-linked
migration files, records which migrations have been applied, and renders
backend-specific DDL for review. It plans and records; executing DDL is
left to your deployment pipeline.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Migration file parse error
  13 - Dependency cycle or unresolved dependency
  14 - Migration not found
  15 - Unsupported database backend`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Project directory containing dbshift.yaml")
}

func loggerFor(cmd *cobra.Command) dbshift.Logger {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		verbose = false
	}
	return logging.NewConsoleLogger(verbose)
}

func projectDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
