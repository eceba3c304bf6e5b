package schema

import (
	"context"
	"fmt"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// PostgresEditor builds PostgreSQL DDL. Identifiers are double-quoted
// and partial indexes are supported via WHERE.
type PostgresEditor struct{}

func NewPostgresEditor() *PostgresEditor { return &PostgresEditor{} }

func (e *PostgresEditor) Backend() dbshift.DatabaseType { return dbshift.DatabasePostgres }

func (e *PostgresEditor) QuoteName(name string) string { return quoteDouble(name) }

func (e *PostgresEditor) QuoteValue(value interface{}) string { return quoteValue(value) }

func (e *PostgresEditor) CreateTableSQL(table string, columns []dbshift.ColumnClause) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", e.QuoteName(table), joinColumnClauses(e.QuoteName, columns))
}

func (e *PostgresEditor) DropTableSQL(table string, cascade bool) string {
	if cascade {
		return fmt.Sprintf("DROP TABLE %s CASCADE", e.QuoteName(table))
	}
	return fmt.Sprintf("DROP TABLE %s", e.QuoteName(table))
}

func (e *PostgresEditor) AddColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

func (e *PostgresEditor) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", e.QuoteName(table), e.QuoteName(column))
}

func (e *PostgresEditor) RenameColumnSQL(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", e.QuoteName(table), e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *PostgresEditor) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *PostgresEditor) AddConstraintSQL(table, constraintSQL string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", e.QuoteName(table), constraintSQL)
}

func (e *PostgresEditor) DropConstraintSQL(table, constraintName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", e.QuoteName(table), e.QuoteName(constraintName))
}

func (e *PostgresEditor) AlterColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

func (e *PostgresEditor) CreateIndexSQL(name, table string, columns []string, unique bool, where string) string {
	keyword := "CREATE INDEX"
	if unique {
		keyword = "CREATE UNIQUE INDEX"
	}
	sql := fmt.Sprintf("%s %s ON %s (%s)", keyword, e.QuoteName(name), e.QuoteName(table), joinQuoted(e.QuoteName, columns))
	if where != "" {
		sql += " WHERE " + where
	}
	return sql
}

func (e *PostgresEditor) DropIndexSQL(name, table string) string {
	return fmt.Sprintf("DROP INDEX %s", e.QuoteName(name))
}

func (e *PostgresEditor) Execute(ctx context.Context, sql string) error {
	return fmt.Errorf("postgres editor builds SQL only: %w", dbshift.ErrExecutionNotSupported)
}
