package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/velora-dev/dbshift/internal/graph"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show pending migrations in dependency order",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFor(cmd)
		proj, err := openProject(projectDir(cmd), logger)
		if err != nil {
			return err
		}

		source, err := proj.newSource()
		if err != nil {
			return err
		}

		migrations, err := source.AllMigrations()
		if err != nil {
			return err
		}
		byKey := make(map[dbshift.MigrationKey]*dbshift.Migration, len(migrations))
		for _, m := range migrations {
			byKey[m.Key()] = m
		}
		order, err := graph.FromResolvedMigrations(migrations, proj.resolutionContext()).TopologicalSort()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		var pending []dbshift.MigrationKey
		for _, key := range order {
			applied, err := rec.IsApplied(ctx, key.AppLabel, key.Name)
			if err != nil {
				return err
			}
			if !applied {
				pending = append(pending, key)
			}
		}

		out := cmd.OutOrStdout()
		if len(pending) == 0 {
			fmt.Fprintln(out, appliedStyle.Render(symbolApplied+" Nothing to apply, ledger is up to date"))
			return nil
		}

		fmt.Fprintln(out, titleStyle.Render("Planned migrations"))
		for _, key := range pending {
			m := byKey[key]
			fmt.Fprintf(out, "  %s %s\n", pendingStyle.Render(symbolPending), key)
			for _, op := range m.Operations {
				fmt.Fprintf(out, "      %s %s\n", mutedStyle.Render(symbolArrow), op.Describe())
			}
		}
		fmt.Fprintf(out, "\n%s\n", mutedStyle.Render(fmt.Sprintf("%d migration(s) pending", len(pending))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
