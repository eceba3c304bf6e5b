package schema

import (
	"context"
	"fmt"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

const mysqlTableSuffix = " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"

// MySQLEditor builds MySQL DDL. Identifiers use backticks, column type
// changes use MODIFY COLUMN, and cascade drops are emulated by toggling
// FOREIGN_KEY_CHECKS because MySQL has no DROP TABLE CASCADE.
type MySQLEditor struct{}

func NewMySQLEditor() *MySQLEditor { return &MySQLEditor{} }

func (e *MySQLEditor) Backend() dbshift.DatabaseType { return dbshift.DatabaseMySQL }

func (e *MySQLEditor) QuoteName(name string) string { return quoteBacktick(name) }

func (e *MySQLEditor) QuoteValue(value interface{}) string { return quoteValue(value) }

func (e *MySQLEditor) CreateTableSQL(table string, columns []dbshift.ColumnClause) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)%s", e.QuoteName(table), joinColumnClauses(e.QuoteName, columns), mysqlTableSuffix)
}

func (e *MySQLEditor) DropTableSQL(table string, cascade bool) string {
	if cascade {
		return fmt.Sprintf("SET FOREIGN_KEY_CHECKS=0; DROP TABLE %s; SET FOREIGN_KEY_CHECKS=1", e.QuoteName(table))
	}
	return fmt.Sprintf("DROP TABLE %s", e.QuoteName(table))
}

func (e *MySQLEditor) AddColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

func (e *MySQLEditor) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", e.QuoteName(table), e.QuoteName(column))
}

func (e *MySQLEditor) RenameColumnSQL(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", e.QuoteName(table), e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *MySQLEditor) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", e.QuoteName(oldName), e.QuoteName(newName))
}

func (e *MySQLEditor) AddConstraintSQL(table, constraintSQL string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", e.QuoteName(table), constraintSQL)
}

func (e *MySQLEditor) DropConstraintSQL(table, constraintName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", e.QuoteName(table), e.QuoteName(constraintName))
}

func (e *MySQLEditor) AlterColumnSQL(table string, column dbshift.ColumnClause) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s", e.QuoteName(table), e.QuoteName(column.Name), column.Definition)
}

// CreateIndexSQL ignores the where clause because MySQL has no partial
// indexes. The predicate is preserved as a trailing comment so the
// intent survives in review output.
func (e *MySQLEditor) CreateIndexSQL(name, table string, columns []string, unique bool, where string) string {
	keyword := "CREATE INDEX"
	if unique {
		keyword = "CREATE UNIQUE INDEX"
	}
	sql := fmt.Sprintf("%s %s ON %s (%s)", keyword, e.QuoteName(name), e.QuoteName(table), joinQuoted(e.QuoteName, columns))
	if where != "" {
		sql += " /* WHERE " + where + " */"
	}
	return sql
}

func (e *MySQLEditor) DropIndexSQL(name, table string) string {
	return fmt.Sprintf("DROP INDEX %s ON %s", e.QuoteName(name), e.QuoteName(table))
}

func (e *MySQLEditor) Execute(ctx context.Context, sql string) error {
	return fmt.Errorf("mysql editor builds SQL only: %w", dbshift.ErrExecutionNotSupported)
}
