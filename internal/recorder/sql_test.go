package recorder

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-dev/dbshift/pkg/dbshift"
	_ "modernc.org/sqlite"
)

func newSQLiteRecorder(t *testing.T) *SQLRecorder {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := NewSQLRecorder(db, dbshift.DatabaseSQLite, "")
	require.NoError(t, rec.EnsureSchemaTable(context.Background()))
	return rec
}

func TestSQLRecorder_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	rec := newSQLiteRecorder(t)

	applied, err := rec.IsApplied(ctx, "users", "0001_initial")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "blog", "0001_initial"))

	applied, err = rec.IsApplied(ctx, "users", "0001_initial")
	require.NoError(t, err)
	assert.True(t, applied)

	records, err := rec.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "users", records[0].App)
	assert.Equal(t, "blog", records[1].App)
	assert.NotZero(t, records[0].ID)
	assert.False(t, records[0].Applied.IsZero())
}

func TestSQLRecorder_SQLiteDuplicatesAreKept(t *testing.T) {
	ctx := context.Background()
	rec := newSQLiteRecorder(t)

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))

	applied, err := rec.IsApplied(ctx, "users", "0001_initial")
	require.NoError(t, err)
	assert.True(t, applied)

	records, err := rec.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLRecorder_SQLiteUnapply(t *testing.T) {
	ctx := context.Background()
	rec := newSQLiteRecorder(t)

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0002_add_email"))
	require.NoError(t, rec.RecordUnapplied(ctx, "users", "0001_initial"))

	applied, err := rec.IsApplied(ctx, "users", "0001_initial")
	require.NoError(t, err)
	assert.False(t, applied)

	records, err := rec.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0002_add_email", records[0].Name)
}

func TestSQLRecorder_EnsureSchemaTableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	rec := newSQLiteRecorder(t)

	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))
	require.NoError(t, rec.EnsureSchemaTable(ctx))

	records, err := rec.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSQLRecorder_CustomTableName(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := NewSQLRecorder(db, dbshift.DatabaseSQLite, "custom_ledger")
	require.NoError(t, rec.EnsureSchemaTable(ctx))
	require.NoError(t, rec.RecordApplied(ctx, "users", "0001_initial"))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "custom_ledger"`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLRecorder_UnsupportedBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := NewSQLRecorder(db, dbshift.DatabasePostgres, "")
	err = rec.EnsureSchemaTable(context.Background())
	assert.ErrorIs(t, err, dbshift.ErrUnsupportedBackend)
}
