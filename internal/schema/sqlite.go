package schema

import (
	"context"
	"fmt"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// SQLiteEditor builds SQLite DDL. Quoting and index support follow the
// PostgreSQL dialect; SQLite has no DROP TABLE CASCADE so the cascade
// flag is ignored.
type SQLiteEditor struct{}

func NewSQLiteEditor() *SQLiteEditor { return &SQLiteEditor{} }

func (e *SQLiteEditor) Backend() dbshift.DatabaseType { return dbshift.DatabaseSQLite }

func (e *SQLiteEditor) QuoteName(name string) string { return quoteDouble(name) }

func (e *SQLiteEditor) QuoteValue(value interface{}) string { return quoteValue(value) }

func (e *SQLiteEditor) CreateTableSQL(table string, columns []dbshift.ColumnClause) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", e.QuoteName(table), joinColumnClauses(e.QuoteName, columns))
}

func (e *SQLiteEditor) DropTableSQL(table string, cascade bool) string {
	return fmt.Sprintf("DROP TABLE %s", e.QuoteName(table))
}

func (e *SQLiteEditor) AddColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

func (e *SQLiteEditor) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", e.QuoteName(table), e.QuoteName(column))
}

func (e *SQLiteEditor) RenameColumnSQL(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", e.QuoteName(table), e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *SQLiteEditor) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *SQLiteEditor) AddConstraintSQL(table, constraintSQL string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", e.QuoteName(table), constraintSQL)
}

func (e *SQLiteEditor) DropConstraintSQL(table, constraintName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", e.QuoteName(table), e.QuoteName(constraintName))
}

func (e *SQLiteEditor) AlterColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

func (e *SQLiteEditor) CreateIndexSQL(name, table string, columns []string, unique bool, where string) string {
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

func (e *SQLiteEditor) DropIndexSQL(name, table string) string {
	return fmt.Sprintf("DROP INDEX %s", e.QuoteName(name))
}

func (e *SQLiteEditor) Execute(ctx context.Context, sql string) error {
	return fmt.Errorf("sqlite editor builds SQL only: %w", dbshift.ErrExecutionNotSupported)
}
