package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

var newCmd = &cobra.Command{
	Use:   "new <app> [name]",
	Short: "Create an empty migration file",
	Long: `Creates a numbered migration file under the app's migrations
directory. When name is omitted a timestamped auto name is used. The new
migration depends on the app's latest existing migration.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFor(cmd)
		proj, err := openProject(projectDir(cmd), logger)
		if err != nil {
			return err
		}

		app := args[0]
		suffix := ""
		if len(args) == 2 {
			suffix = args[1]
		} else {
			suffix = dbshift.SuggestMigrationName(nil, time.Now())
		}

		l, err := proj.newLoader()
		if err != nil {
			// A missing migrations root is fine for the very first migration.
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			l = nil
		}

		var deps [][2]string
		number := 1
		if l != nil {
			existing, err := l.AppMigrations(app)
			if err == nil && len(existing) > 0 {
				last := existing[len(existing)-1]
				deps = append(deps, [2]string{last.AppLabel, last.Name})
				number = len(existing) + 1
			}
		}

		name := fmt.Sprintf("%04d_%s", number, suffix)
		m := dbshift.Migration{
			AppLabel:     app,
			Name:         name,
			Dependencies: deps,
			Atomic:       true,
			Operations:   []dbshift.Operation{},
		}

		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}

		dir := filepath.Join(proj.migrationsRoot(), app)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		path := filepath.Join(dir, name+".json")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("migration file already exists: %s", path)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", appliedStyle.Render(symbolApplied), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
