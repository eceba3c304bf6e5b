package recorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// PostgresRecorder persists the ledger in a PostgreSQL table via a pgx
// connection pool. A monotonic sequence column captures insertion order
// independently of timestamps.
type PostgresRecorder struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresRecorder creates a recorder writing to the given table.
// An empty table name falls back to dbshift.DefaultLedgerTable.
// Panics if pool is nil.
func NewPostgresRecorder(pool *pgxpool.Pool, table string) *PostgresRecorder {
	if pool == nil {
		panic("pool cannot be nil")
	}
	if table == "" {
		table = dbshift.DefaultLedgerTable
	}
	return &PostgresRecorder{pool: pool, table: table}
}

func (r *PostgresRecorder) quotedTable() string {
	return `"` + strings.ReplaceAll(r.table, `"`, `""`) + `"`
}

// EnsureSchemaTable creates the ledger table if missing. Idempotent.
func (r *PostgresRecorder) EnsureSchemaTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seq BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	id UUID NOT NULL,
	app TEXT NOT NULL,
	name TEXT NOT NULL,
	applied TIMESTAMPTZ NOT NULL DEFAULT now()
)`, r.quotedTable())
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure ledger table %s: %w", r.table, err)
	}
	return nil
}

// RecordApplied appends a record unconditionally. No uniqueness is
// enforced on (app, name); duplicates are stored.
func (r *PostgresRecorder) RecordApplied(ctx context.Context, app, name string) error {
	sql := fmt.Sprintf(`INSERT INTO %s (id, app, name) VALUES ($1, $2, $3)`, r.quotedTable())
	if _, err := r.pool.Exec(ctx, sql, uuid.New(), app, name); err != nil {
		return fmt.Errorf("record applied %s.%s: %w", app, name, err)
	}
	return nil
}

// RecordUnapplied removes every record for (app, name).
func (r *PostgresRecorder) RecordUnapplied(ctx context.Context, app, name string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE app = $1 AND name = $2`, r.quotedTable())
	if _, err := r.pool.Exec(ctx, sql, app, name); err != nil {
		return fmt.Errorf("record unapplied %s.%s: %w", app, name, err)
	}
	return nil
}

// IsApplied reports whether at least one record exists for (app, name).
func (r *PostgresRecorder) IsApplied(ctx context.Context, app, name string) (bool, error) {
	sql := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE app = $1 AND name = $2)`, r.quotedTable())
	var applied bool
	if err := r.pool.QueryRow(ctx, sql, app, name).Scan(&applied); err != nil {
		return false, fmt.Errorf("query applied %s.%s: %w", app, name, err)
	}
	return applied, nil
}

// AppliedMigrations returns all records in insertion order.
func (r *PostgresRecorder) AppliedMigrations(ctx context.Context) ([]dbshift.AppliedMigration, error) {
	sql := fmt.Sprintf(`SELECT id, app, name, applied FROM %s ORDER BY seq`, r.quotedTable())
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var out []dbshift.AppliedMigration
	for rows.Next() {
		var rec dbshift.AppliedMigration
		if err := rows.Scan(&rec.ID, &rec.App, &rec.Name, &rec.Applied); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return out, nil
}
