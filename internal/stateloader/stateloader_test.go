package stateloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-dev/dbshift/internal/logging"
	"github.com/velora-dev/dbshift/internal/recorder"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

type sliceSource struct {
	migrations []*dbshift.Migration
}

func (s *sliceSource) AllMigrations() ([]*dbshift.Migration, error) {
	return s.migrations, nil
}

func usersInitial() *dbshift.Migration {
	return &dbshift.Migration{
		AppLabel: "users",
		Name:     "0001_initial",
		Operations: []dbshift.Operation{{
			Type: dbshift.OpCreateTable,
			Name: "users_user",
			Columns: []dbshift.ColumnDefinition{
				{Name: "id", TypeDefinition: "BIGINT", PrimaryKey: true, AutoIncrement: true},
				{Name: "username", TypeDefinition: "VARCHAR(150)", NotNull: true},
			},
		}},
	}
}

func usersAddEmail() *dbshift.Migration {
	return &dbshift.Migration{
		AppLabel:     "users",
		Name:         "0002_add_email",
		Dependencies: [][2]string{{"users", "0001_initial"}},
		Operations: []dbshift.Operation{{
			Type:   dbshift.OpAddColumn,
			Table:  "users_user",
			Column: dbshift.ColumnDefinition{Name: "email", TypeDefinition: "VARCHAR(254)", NotNull: true},
		}},
	}
}

func newLoader(t *testing.T, migrations ...*dbshift.Migration) (*StateLoader, *recorder.MemoryRecorder) {
	t.Helper()
	rec := recorder.NewMemoryRecorder()
	loader := New(&sliceSource{migrations: migrations}, rec, logging.NewNullLogger())
	return loader, rec
}

func TestStateLoader_EmptyLedgerGivesEmptyState(t *testing.T) {
	ctx := context.Background()
	loader, _ := newLoader(t, usersInitial(), usersAddEmail())

	state, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Models)
}

func TestStateLoader_ReplaysOnlyAppliedMigrations(t *testing.T) {
	ctx := context.Background()
	loader, rec := newLoader(t, usersInitial(), usersAddEmail())

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))

	state, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)

	model, ok := state.GetModel("users", "User")
	require.True(t, ok)
	assert.Contains(t, model.Fields, "username")
	assert.NotContains(t, model.Fields, "email")
}

func TestStateLoader_ReplaysFullChain(t *testing.T) {
	ctx := context.Background()
	loader, rec := newLoader(t, usersInitial(), usersAddEmail())

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0002_add_email"))

	state, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)

	model, ok := state.GetModel("users", "User")
	require.True(t, ok)
	assert.Contains(t, model.Fields, "email")
}

func TestStateLoader_DatabaseOnlyMigrationsSkipState(t *testing.T) {
	ctx := context.Background()
	dbOnly := &dbshift.Migration{
		AppLabel:     "users",
		Name:         "0002_backfill",
		DatabaseOnly: true,
		Dependencies: [][2]string{{"users", "0001_initial"}},
		Operations: []dbshift.Operation{{
			Type:  dbshift.OpAddColumn,
			Table: "users_user",
			Column: dbshift.ColumnDefinition{
				Name: "shadow", TypeDefinition: "TEXT",
			},
		}},
	}
	loader, rec := newLoader(t, usersInitial(), dbOnly)

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0002_backfill"))

	state, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)

	model, ok := state.GetModel("users", "User")
	require.True(t, ok)
	assert.NotContains(t, model.Fields, "shadow")
}

func TestStateLoader_BuildCurrentStateIsDeterministic(t *testing.T) {
	ctx := context.Background()
	loader, rec := newLoader(t, usersInitial(), usersAddEmail())

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0002_add_email"))

	first, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)
	second, err := loader.BuildCurrentState(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.SortedKeys(), second.SortedKeys())
	assert.NotSame(t, first, second)
}

func TestStateLoader_BuildStateUpTo(t *testing.T) {
	ctx := context.Background()
	loader, rec := newLoader(t, usersInitial(), usersAddEmail())

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0002_add_email"))

	state, err := loader.BuildStateUpTo(ctx, "users", "0001_initial")
	require.NoError(t, err)

	model, ok := state.GetModel("users", "User")
	require.True(t, ok)
	assert.NotContains(t, model.Fields, "email")
}

func TestStateLoader_BuildStateUpToUnknownTarget(t *testing.T) {
	ctx := context.Background()
	loader, _ := newLoader(t, usersInitial())

	_, err := loader.BuildStateUpTo(ctx, "users", "0099_missing")
	assert.ErrorIs(t, err, dbshift.ErrMigrationNotFound)
}

func TestStateLoader_AppliedPlanFollowsDependencyOrder(t *testing.T) {
	ctx := context.Background()
	blog := &dbshift.Migration{
		AppLabel:     "blog",
		Name:         "0001_initial",
		Dependencies: [][2]string{{"users", "0001_initial"}},
		Operations: []dbshift.Operation{{
			Type: dbshift.OpCreateTable,
			Name: "blog_post",
			Columns: []dbshift.ColumnDefinition{
				{Name: "id", TypeDefinition: "BIGINT", PrimaryKey: true},
			},
		}},
	}
	loader, rec := newLoader(t, blog, usersInitial())

	require.NoError(t, rec.RecordApplied(ctx, "blog", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))

	plan, err := loader.AppliedPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, dbshift.MigrationKey{AppLabel: "users", Name: "0001_initial"}, plan[0])
	assert.Equal(t, dbshift.MigrationKey{AppLabel: "blog", Name: "0001_initial"}, plan[1])
}

func TestStateLoader_AppliedPlanIgnoresUnknownLedgerEntries(t *testing.T) {
	ctx := context.Background()
	loader, rec := newLoader(t, usersInitial())

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "ghost", "0001_initial"))

	plan, err := loader.AppliedPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "users", plan[0].AppLabel)
}
