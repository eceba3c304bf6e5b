package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/velora-dev/dbshift/internal/schema"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

var sqlmigrateCmd = &cobra.Command{
	Use:   "sqlmigrate <app> <name>",
	Short: "Render a migration as SQL for a target backend",
	Long: `Renders the named migration's operations as DDL text without touching
any database. The --backend flag selects the dialect (postgres, mysql,
sqlite). name may be an unambiguous prefix such as "0001".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backendName, err := cmd.Flags().GetString("backend")
		if err != nil {
			return err
		}

		editor, err := schema.NewEditor(dbshift.DatabaseType(backendName))
		if err != nil {
			return err
		}

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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "-- Migration %s (%s)\n", m.Key(), editor.Backend())
		if m.StateOnly {
			fmt.Fprintln(out, "-- state_only migration, no SQL is emitted")
			return nil
		}

		for _, op := range m.Operations {
			stmts, err := schema.OperationSQL(editor, op)
			if err != nil {
				return err
			}
			if len(stmts) == 0 {
				continue
			}
			fmt.Fprintf(out, "-- %s\n", op.Describe())
			for _, stmt := range stmts {
				fmt.Fprintf(out, "%s;\n", stmt)
			}
		}
		return nil
	},
}

func init() {
	sqlmigrateCmd.Flags().StringP("backend", "b", "postgres", "Target backend: postgres, mysql, or sqlite")
	rootCmd.AddCommand(sqlmigrateCmd)
}
