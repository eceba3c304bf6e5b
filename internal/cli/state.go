package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/velora-dev/dbshift/internal/stateloader"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the schema state implied by applied migrations",
	Long: `Replays every applied migration into an in-memory project state and
prints the resulting models, fields, and indexes. No database schema is
inspected; the output reflects the ledger, not reality.`,
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

		ctx := cmd.Context()
		rec, cleanup, err := proj.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		state, err := stateloader.New(source, rec, logger).BuildCurrentState(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		keys := state.SortedKeys()
		if len(keys) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No applied migrations, state is empty"))
			return nil
		}

		for _, key := range keys {
			model, _ := state.GetModel(key.AppLabel, key.Model)
			fmt.Fprintf(out, "%s %s\n",
				titleStyle.Render(fmt.Sprintf("%s.%s", key.AppLabel, key.Model)),
				mutedStyle.Render("("+model.TableName+")"))

			fields := model.FieldNames()
			sort.Strings(fields)
			for _, name := range fields {
				field := model.Fields[name]
				fmt.Fprintf(out, "  %s %s\n", name, mutedStyle.Render(field.TypeDefinition))
			}
			for _, idx := range model.Indexes {
				kind := "index"
				if idx.Unique {
					kind = "unique index"
				}
				fmt.Fprintf(out, "  %s\n", mutedStyle.Render(fmt.Sprintf("%s on %v", kind, idx.Columns)))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
