package stateloader

import (
	"context"
	"fmt"

	"github.com/velora-dev/dbshift/internal/graph"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// StateLoader combines a migration source with an applied-migration
// recorder to answer "what does the schema look like right now".
type StateLoader struct {
	source   dbshift.MigrationSource
	recorder dbshift.Recorder
	logger   dbshift.Logger
}

// New creates a StateLoader. Panics if any dependency is nil.
func New(source dbshift.MigrationSource, recorder dbshift.Recorder, logger dbshift.Logger) *StateLoader {
	if source == nil {
		panic("source cannot be nil")
	}
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StateLoader{source: source, recorder: recorder, logger: logger}
}

// BuildCurrentState replays every applied migration into a fresh
// ProjectState. Migrations are replayed in the order the source yields
// them; migrations flagged database_only contribute nothing to state.
// The result is rebuilt on every call, never cached.
func (l *StateLoader) BuildCurrentState(ctx context.Context) (*dbshift.ProjectState, error) {
	applied, err := l.appliedSet(ctx)
	if err != nil {
		return nil, err
	}
	return l.replay(applied, nil)
}

// BuildStateUpTo replays applied migrations up to and including
// (app, name). Applied migrations after the target in source order are
// excluded. Returns ErrMigrationNotFound when the target is not known
// to the source.
func (l *StateLoader) BuildStateUpTo(ctx context.Context, app, name string) (*dbshift.ProjectState, error) {
	applied, err := l.appliedSet(ctx)
	if err != nil {
		return nil, err
	}
	target := dbshift.MigrationKey{AppLabel: app, Name: name}
	return l.replay(applied, &target)
}

// AppliedPlan returns the applied migrations known to the source in
// dependency order. Ledger entries with no matching migration on disk
// are ignored.
func (l *StateLoader) AppliedPlan(ctx context.Context) ([]dbshift.MigrationKey, error) {
	applied, err := l.appliedSet(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := l.source.AllMigrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	g := graph.New()
	for _, m := range migrations {
		g.AddMigration(m)
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var plan []dbshift.MigrationKey
	for _, key := range order {
		if applied[key] {
			plan = append(plan, key)
		}
	}
	return plan, nil
}

func (l *StateLoader) appliedSet(ctx context.Context) (map[dbshift.MigrationKey]bool, error) {
	records, err := l.recorder.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[dbshift.MigrationKey]bool, len(records))
	for _, rec := range records {
		applied[dbshift.MigrationKey{AppLabel: rec.App, Name: rec.Name}] = true
	}
	return applied, nil
}

// replay walks the source's migrations in order and applies each one
// present in the applied set. When target is non-nil, replay stops after
// the target migration has been applied.
func (l *StateLoader) replay(applied map[dbshift.MigrationKey]bool, target *dbshift.MigrationKey) (*dbshift.ProjectState, error) {
	migrations, err := l.source.AllMigrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	if target != nil {
		found := false
		for _, m := range migrations {
			if m.Key() == *target {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("migration %s: %w", target, dbshift.ErrMigrationNotFound)
		}
	}

	state := dbshift.NewProjectState()
	replayed := 0
	for _, m := range migrations {
		key := m.Key()
		if !applied[key] {
			continue
		}
		if m.DatabaseOnly {
			l.logger.Verbose("Skipping state replay for database-only migration %s", key)
		} else {
			state.ApplyOperations(m.Operations, key.AppLabel)
			replayed++
		}
		if target != nil && key == *target {
			break
		}
	}

	l.logger.Verbose("Rebuilt project state from %d applied migrations", replayed)
	return state, nil
}
