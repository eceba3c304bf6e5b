package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage the applied-migration ledger",
}

var recordApplyCmd = &cobra.Command{
	Use:   "apply <app> <name>",
	Short: "Mark a migration as applied",
	Long: `Appends an applied record for the migration. The append is
unconditional; recording twice stores two records. The migration must
exist in the migrations directory; name may be an unambiguous prefix
such as "0001".`,
	Args: cobra.ExactArgs(2),
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
		m, err := l.MigrationByPrefix(args[0], args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := rec.RecordApplied(ctx, m.AppLabel, m.Name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded %s.%s as applied\n",
			appliedStyle.Render(symbolApplied), m.AppLabel, m.Name)
		return nil
	},
}

var recordUnapplyCmd = &cobra.Command{
	Use:   "unapply <app> <name>",
	Short: "Remove a migration's applied records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFor(cmd)
		proj, err := openProject(projectDir(cmd), logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := rec.RecordUnapplied(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed applied records for %s.%s\n",
			pendingStyle.Render(symbolPending), args[0], args[1])
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger records in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFor(cmd)
		proj, err := openProject(projectDir(cmd), logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := rec.AppliedMigrations(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("Ledger is empty"))
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s %s.%s %s\n",
				appliedStyle.Render(symbolApplied), r.App, r.Name,
				mutedStyle.Render(r.Applied.Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordApplyCmd)
	recordCmd.AddCommand(recordUnapplyCmd)
	recordCmd.AddCommand(recordListCmd)
	rootCmd.AddCommand(recordCmd)
}
