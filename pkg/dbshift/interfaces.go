package dbshift

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationSource supplies the full set of known migrations, in a stable
// order. Implementations include the disk loader and the registry.
type MigrationSource interface {
	// AllMigrations returns every known migration. The order is the
	// source's canonical order and is what the state loader replays in.
	AllMigrations() ([]*Migration, error)
}

// Recorder is the append-only ledger of applied migrations.
//
// RecordApplied appends unconditionally: recording the same (app, name)
// twice stores two rows. Writes must be serialized by the caller across
// concurrent migration-application processes; the engine provides no
// distributed lock.
type Recorder interface {
	// EnsureSchemaTable creates the ledger table if missing. Idempotent.
	EnsureSchemaTable(ctx context.Context) error

	// RecordApplied appends an applied record for (app, name).
	RecordApplied(ctx context.Context, app, name string) error

	// RecordUnapplied removes every record for (app, name).
	RecordUnapplied(ctx context.Context, app, name string) error

	// IsApplied reports whether at least one record exists for (app, name).
	IsApplied(ctx context.Context, app, name string) (bool, error)

	// AppliedMigrations returns all records in insertion order. Insertion
	// order is not necessarily a valid dependency order.
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
}

// SchemaEditor renders schema operations as backend-specific DDL text.
// Editors are pure string builders: Execute always fails with
// ErrExecutionNotSupported, because running DDL belongs to an external
// connection.
type SchemaEditor interface {
	// Backend identifies the editor's target database.
	Backend() DatabaseType

	// QuoteName quotes an identifier (table, column, index name).
	QuoteName(name string) string

	// QuoteValue renders a Go value as a SQL literal.
	QuoteValue(value interface{}) string

	CreateTableSQL(table string, columns []ColumnClause) string
	DropTableSQL(table string, cascade bool) string
	AddColumnSQL(table string, column ColumnClause) string
	DropColumnSQL(table, column string) string
	RenameColumnSQL(table, oldName, newName string) string
	RenameTableSQL(oldName, newName string) string
	AddConstraintSQL(table, constraintSQL string) string
	DropConstraintSQL(table, constraintName string) string
	AlterColumnSQL(table string, column ColumnClause) string
	CreateIndexSQL(name, table string, columns []string, unique bool, where string) string
	DropIndexSQL(name, table string) string

	// Execute is intentionally unimplemented in this layer.
	Execute(ctx context.Context, sql string) error
}

// ColumnClause pairs a column name with its rendered type definition,
// e.g. {"id", "INT PRIMARY KEY"}. All backends accept the same clause
// contract; only quoting and dialect suffixes differ.
type ColumnClause struct {
	Name       string
	Definition string
}

// Connector establishes a pgx connection pool for the ledger database.
// Implementations cover standard auth and cloud IAM token auth.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
