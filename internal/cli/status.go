package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations per app",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFor(cmd)
		proj, err := openProject(projectDir(cmd), logger)
		if err != nil {
			return err
		}

		l, err := proj.newLoader()
		if err != nil {
			return err
		}
		migrations, err := l.AllMigrations()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		appliedCount := 0
		currentApp := ""
		for _, m := range migrations {
			if m.AppLabel != currentApp {
				currentApp = m.AppLabel
				fmt.Fprintln(out, titleStyle.Render(currentApp))
			}

			applied, err := rec.IsApplied(ctx, m.AppLabel, m.Name)
			if err != nil {
				return err
			}
			if applied {
				appliedCount++
				fmt.Fprintf(out, "  %s %s\n", appliedStyle.Render(symbolApplied), m.Name)
			} else {
				fmt.Fprintf(out, "  %s %s\n", pendingStyle.Render(symbolPending), m.Name)
			}
		}

		fmt.Fprintf(out, "\n%s\n", mutedStyle.Render(
			fmt.Sprintf("%d of %d migration(s) applied", appliedCount, len(migrations))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
