package schema

import (
	"fmt"
	"strings"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// ColumnClause renders a column definition as the clause text the editor
// interface consumes. The type definition is taken verbatim; qualifiers
// follow in a fixed order so output is stable across backends.
func ColumnClause(editor dbshift.SchemaEditor, col dbshift.ColumnDefinition) dbshift.ColumnClause {
	var b strings.Builder
	b.WriteString(col.TypeDefinition)
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if col.AutoIncrement {
		switch editor.Backend() {
		case dbshift.DatabaseMySQL:
			b.WriteString(" AUTO_INCREMENT")
		case dbshift.DatabaseSQLite:
			b.WriteString(" AUTOINCREMENT")
		}
		// PostgreSQL expresses auto-increment in the type itself
		// (SERIAL, GENERATED ... AS IDENTITY), so nothing is appended.
	}
	if col.NotNull && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.Unique && !col.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(editor.QuoteValue(*col.Default))
	}
	return dbshift.ColumnClause{Name: col.Name, Definition: b.String()}
}

func columnClauses(editor dbshift.SchemaEditor, cols []dbshift.ColumnDefinition) []dbshift.ColumnClause {
	out := make([]dbshift.ColumnClause, len(cols))
	for i, c := range cols {
		out[i] = ColumnClause(editor, c)
	}
	return out
}

// OperationSQL renders one operation as zero or more DDL statements for
// the editor's backend. State-only operations (model options, unique
// together metadata) and Go hooks render nothing. RunSQL passes its text
// through untouched.
func OperationSQL(editor dbshift.SchemaEditor, op dbshift.Operation) ([]string, error) {
	switch op.Type {
	case dbshift.OpCreateTable:
		stmts := []string{editor.CreateTableSQL(op.Name, columnClauses(editor, op.Columns))}
		for _, c := range op.Constraints {
			stmts = append(stmts, editor.AddConstraintSQL(op.Name, c))
		}
		return stmts, nil

	case dbshift.OpDropTable:
		return []string{editor.DropTableSQL(op.Name, true)}, nil

	case dbshift.OpAddColumn:
		return []string{editor.AddColumnSQL(op.Table, ColumnClause(editor, op.Column))}, nil

	case dbshift.OpDropColumn:
		return []string{editor.DropColumnSQL(op.Table, op.ColumnName)}, nil

	case dbshift.OpAlterColumn:
		clause := ColumnClause(editor, op.NewDefinition)
		clause.Name = op.ColumnName
		return []string{editor.AlterColumnSQL(op.Table, clause)}, nil

	case dbshift.OpRenameColumn:
		return []string{editor.RenameColumnSQL(op.Table, op.OldName, op.NewName)}, nil

	case dbshift.OpRenameTable:
		return []string{editor.RenameTableSQL(op.OldName, op.NewName)}, nil

	case dbshift.OpAddConstraint:
		return []string{editor.AddConstraintSQL(op.Table, op.ConstraintSQL)}, nil

	case dbshift.OpDropConstraint:
		return []string{editor.DropConstraintSQL(op.Table, op.ConstraintName)}, nil

	case dbshift.OpCreateIndex:
		return []string{editor.CreateIndexSQL(op.Name, op.Table, op.IndexColumns, op.Unique, op.Where)}, nil

	case dbshift.OpDropIndex:
		return []string{editor.DropIndexSQL(op.Name, op.Table)}, nil

	case dbshift.OpAlterTableComment:
		return alterCommentSQL(editor, op)

	case dbshift.OpAlterUniqueTogether, dbshift.OpAlterModelOptions:
		// Metadata-only, nothing to emit.
		return nil, nil

	case dbshift.OpCreateInheritedTable:
		cols := append([]dbshift.ColumnDefinition{{
			Name:           op.JoinColumn,
			TypeDefinition: "BIGINT",
			PrimaryKey:     true,
		}}, op.Columns...)
		stmts := []string{editor.CreateTableSQL(op.Name, columnClauses(editor, cols))}
		fk := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			editor.QuoteName(op.Name+"_"+op.JoinColumn+"_fk"),
			editor.QuoteName(op.JoinColumn),
			editor.QuoteName(op.BaseTable),
			editor.QuoteName(op.JoinColumn))
		stmts = append(stmts, editor.AddConstraintSQL(op.Name, fk))
		for _, c := range op.Constraints {
			stmts = append(stmts, editor.AddConstraintSQL(op.Name, c))
		}
		return stmts, nil

	case dbshift.OpAddDiscriminatorColumn:
		def := op.DefaultValue
		col := dbshift.ColumnDefinition{
			Name:           op.ColumnName,
			TypeDefinition: "VARCHAR(255)",
			NotNull:        true,
			Default:        &def,
		}
		return []string{editor.AddColumnSQL(op.Table, ColumnClause(editor, col))}, nil

	case dbshift.OpRunSQL:
		return []string{op.SQL}, nil

	case dbshift.OpRunGo:
		return nil, nil
	}

	return nil, fmt.Errorf("unknown operation type %q", op.Type)
}

func alterCommentSQL(editor dbshift.SchemaEditor, op dbshift.Operation) ([]string, error) {
	switch editor.Backend() {
	case dbshift.DatabasePostgres:
		if op.Comment == nil {
			return []string{fmt.Sprintf("COMMENT ON TABLE %s IS NULL", editor.QuoteName(op.Table))}, nil
		}
		return []string{fmt.Sprintf("COMMENT ON TABLE %s IS %s", editor.QuoteName(op.Table), editor.QuoteValue(*op.Comment))}, nil
	case dbshift.DatabaseMySQL:
		comment := ""
		if op.Comment != nil {
			comment = *op.Comment
		}
		return []string{fmt.Sprintf("ALTER TABLE %s COMMENT = %s", editor.QuoteName(op.Table), editor.QuoteValue(comment))}, nil
	default:
		// SQLite has no table comments.
		return nil, nil
	}
}
