package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// SQLRecorder persists the ledger through database/sql and works with any
// driver that accepts ? placeholders. The dialect only affects the DDL
// emitted by EnsureSchemaTable and identifier quoting.
type SQLRecorder struct {
	db      *sql.DB
	table   string
	backend dbshift.DatabaseType
}

// NewSQLRecorder creates a recorder for the given backend. An empty table
// name falls back to dbshift.DefaultLedgerTable. Panics if db is nil.
func NewSQLRecorder(db *sql.DB, backend dbshift.DatabaseType, table string) *SQLRecorder {
	if db == nil {
		panic("db cannot be nil")
	}
	if table == "" {
		table = dbshift.DefaultLedgerTable
	}
	return &SQLRecorder{db: db, table: table, backend: backend}
}

func (r *SQLRecorder) quotedTable() string {
	if r.backend == dbshift.DatabaseMySQL {
		return "`" + strings.ReplaceAll(r.table, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(r.table, `"`, `""`) + `"`
}

// EnsureSchemaTable creates the ledger table if missing. Idempotent.
// Timestamps are stored as RFC 3339 text so the same schema works for
// MySQL and SQLite without driver-specific time handling.
func (r *SQLRecorder) EnsureSchemaTable(ctx context.Context) error {
	var ddl string
	switch r.backend {
	case dbshift.DatabaseMySQL:
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seq BIGINT AUTO_INCREMENT PRIMARY KEY,
	id CHAR(36) NOT NULL,
	app VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	applied VARCHAR(64) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, r.quotedTable())
	case dbshift.DatabaseSQLite:
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	app TEXT NOT NULL,
	name TEXT NOT NULL,
	applied TEXT NOT NULL
)`, r.quotedTable())
	default:
		return fmt.Errorf("ledger table for backend %q: %w", r.backend, dbshift.ErrUnsupportedBackend)
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure ledger table %s: %w", r.table, err)
	}
	return nil
}

// RecordApplied appends a record unconditionally; duplicates are stored.
func (r *SQLRecorder) RecordApplied(ctx context.Context, app, name string) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (id, app, name, applied) VALUES (?, ?, ?, ?)`, r.quotedTable())
	applied := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, stmt, uuid.New().String(), app, name, applied); err != nil {
		return fmt.Errorf("record applied %s.%s: %w", app, name, err)
	}
	return nil
}

// RecordUnapplied removes every record for (app, name).
func (r *SQLRecorder) RecordUnapplied(ctx context.Context, app, name string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE app = ? AND name = ?`, r.quotedTable())
	if _, err := r.db.ExecContext(ctx, stmt, app, name); err != nil {
		return fmt.Errorf("record unapplied %s.%s: %w", app, name, err)
	}
	return nil
}

// IsApplied reports whether at least one record exists for (app, name).
func (r *SQLRecorder) IsApplied(ctx context.Context, app, name string) (bool, error) {
	stmt := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE app = ? AND name = ?`, r.quotedTable())
	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, app, name).Scan(&n); err != nil {
		return false, fmt.Errorf("query applied %s.%s: %w", app, name, err)
	}
	return n > 0, nil
}

// AppliedMigrations returns all records in insertion order.
func (r *SQLRecorder) AppliedMigrations(ctx context.Context) ([]dbshift.AppliedMigration, error) {
	stmt := fmt.Sprintf(`SELECT id, app, name, applied FROM %s ORDER BY seq`, r.quotedTable())
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var out []dbshift.AppliedMigration
	for rows.Next() {
		var (
			rawID      string
			rawApplied string
			rec        dbshift.AppliedMigration
		)
		if err := rows.Scan(&rawID, &rec.App, &rec.Name, &rawApplied); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse record id %q: %w", rawID, err)
		}
		applied, err := time.Parse(time.RFC3339Nano, rawApplied)
		if err != nil {
			return nil, fmt.Errorf("parse record timestamp %q: %w", rawApplied, err)
		}
		rec.ID = id
		rec.Applied = applied
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return out, nil
}
