package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		// Machine-parseable version to stdout, commentary to stderr.
		fmt.Printf("dbshift %s (%s, %s) %s/%s\n", version, commit, date, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintln(os.Stderr, "Database schema migration tool")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
