package dbshift

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OperationType discriminates the closed set of operation variants.
// The string values double as the "type" tag of the JSON wire format.
type OperationType string

const (
	OpCreateTable            OperationType = "CreateTable"
	OpDropTable              OperationType = "DropTable"
	OpAddColumn              OperationType = "AddColumn"
	OpDropColumn             OperationType = "DropColumn"
	OpAlterColumn            OperationType = "AlterColumn"
	OpRenameColumn           OperationType = "RenameColumn"
	OpRenameTable            OperationType = "RenameTable"
	OpAddConstraint          OperationType = "AddConstraint"
	OpDropConstraint         OperationType = "DropConstraint"
	OpCreateIndex            OperationType = "CreateIndex"
	OpDropIndex              OperationType = "DropIndex"
	OpAlterTableComment      OperationType = "AlterTableComment"
	OpAlterUniqueTogether    OperationType = "AlterUniqueTogether"
	OpAlterModelOptions      OperationType = "AlterModelOptions"
	OpCreateInheritedTable   OperationType = "CreateInheritedTable"
	OpAddDiscriminatorColumn OperationType = "AddDiscriminatorColumn"
	OpRunSQL                 OperationType = "RunSQL"
	OpRunGo                  OperationType = "RunGo"
)

// Operation is one atomic schema-change instruction. Exactly the fields
// relevant to its Type are populated; the remaining fields are zero.
// RunSQL and RunGo are opaque escape hatches that never mutate tracked
// state.
type Operation struct {
	Type OperationType

	// CreateTable, CreateInheritedTable
	Name        string
	Columns     []ColumnDefinition
	Constraints []string
	BaseTable   string
	JoinColumn  string

	// Column-level operations
	Table         string
	Column        ColumnDefinition // AddColumn payload
	ColumnName    string           // DropColumn, AlterColumn, AddDiscriminatorColumn target
	NewDefinition ColumnDefinition // AlterColumn
	OldDefinition *ColumnDefinition
	DefaultValue  string // AddDiscriminatorColumn

	// Renames
	OldName string
	NewName string

	// Constraints and indexes
	ConstraintSQL  string
	ConstraintName string
	IndexColumns   []string
	Unique         bool
	Where          string

	// Model-level metadata
	Comment        *string
	UniqueTogether [][]string
	Options        map[string]string

	// Escape hatches
	SQL         string
	ReverseSQL  string
	Code        string
	ReverseCode string
}

// NameFragment returns the lowercase fragment contributed to an
// auto-generated migration name. RunSQL and RunGo contribute nothing
// (ok=false), which forces the caller into timestamp auto-naming.
// Fragments are always lowercase.
func (op Operation) NameFragment() (string, bool) {
	switch op.Type {
	case OpCreateTable:
		return strings.ToLower(op.Name), true
	case OpDropTable:
		return "delete_" + strings.ToLower(op.Name), true
	case OpAddColumn:
		return strings.ToLower(op.Table) + "_" + strings.ToLower(op.Column.Name), true
	case OpDropColumn:
		return "remove_" + strings.ToLower(op.Table) + "_" + strings.ToLower(op.ColumnName), true
	case OpAlterColumn:
		return "alter_" + strings.ToLower(op.Table) + "_" + strings.ToLower(op.ColumnName), true
	case OpRenameTable:
		return "rename_" + strings.ToLower(op.OldName) + "_to_" + strings.ToLower(op.NewName), true
	case OpRenameColumn:
		return "rename_" + strings.ToLower(op.Table) + "_" + strings.ToLower(op.NewName), true
	case OpAddConstraint:
		return "add_constraint_" + strings.ToLower(op.Table), true
	case OpDropConstraint:
		return "drop_constraint_" + strings.ToLower(op.ConstraintName), true
	case OpCreateIndex:
		if op.Unique {
			return "create_unique_index_" + strings.ToLower(op.Table), true
		}
		return "create_index_" + strings.ToLower(op.Table), true
	case OpDropIndex:
		return "drop_index_" + strings.ToLower(op.Table), true
	case OpAlterTableComment:
		return "alter_comment_" + strings.ToLower(op.Table), true
	case OpAlterUniqueTogether:
		return "alter_unique_" + strings.ToLower(op.Table), true
	case OpAlterModelOptions:
		return "alter_options_" + strings.ToLower(op.Table), true
	case OpCreateInheritedTable:
		return "create_inherited_" + strings.ToLower(op.Name), true
	case OpAddDiscriminatorColumn:
		return "add_discriminator_" + strings.ToLower(op.Table), true
	}
	return "", false
}

// Describe returns a human-readable one-line description of the operation.
func (op Operation) Describe() string {
	switch op.Type {
	case OpCreateTable:
		return fmt.Sprintf("Create table %s", op.Name)
	case OpDropTable:
		return fmt.Sprintf("Drop table %s", op.Name)
	case OpAddColumn:
		return fmt.Sprintf("Add column %s to %s", op.Column.Name, op.Table)
	case OpDropColumn:
		return fmt.Sprintf("Drop column %s from %s", op.ColumnName, op.Table)
	case OpAlterColumn:
		return fmt.Sprintf("Alter column %s on %s", op.ColumnName, op.Table)
	case OpRenameTable:
		return fmt.Sprintf("Rename table %s to %s", op.OldName, op.NewName)
	case OpRenameColumn:
		return fmt.Sprintf("Rename column %s to %s on %s", op.OldName, op.NewName, op.Table)
	case OpAddConstraint:
		return fmt.Sprintf("Add constraint on %s", op.Table)
	case OpDropConstraint:
		return fmt.Sprintf("Drop constraint %s from %s", op.ConstraintName, op.Table)
	case OpCreateIndex:
		if op.Unique {
			return fmt.Sprintf("Create unique index on %s", op.Table)
		}
		return fmt.Sprintf("Create index on %s", op.Table)
	case OpDropIndex:
		return fmt.Sprintf("Drop index on %s", op.Table)
	case OpAlterTableComment:
		if op.Comment == nil {
			return fmt.Sprintf("Remove comment from %s", op.Table)
		}
		return fmt.Sprintf("Set comment on %s to '%s'", op.Table, *op.Comment)
	case OpAlterUniqueTogether:
		return fmt.Sprintf("Alter unique_together on %s", op.Table)
	case OpAlterModelOptions:
		return fmt.Sprintf("Alter model options on %s", op.Table)
	case OpCreateInheritedTable:
		return fmt.Sprintf("Create inherited table %s from %s", op.Name, op.BaseTable)
	case OpAddDiscriminatorColumn:
		return fmt.Sprintf("Add discriminator column %s to %s", op.ColumnName, op.Table)
	case OpRunSQL:
		return fmt.Sprintf("RunSQL: %s", truncate(op.SQL, 40))
	case OpRunGo:
		return fmt.Sprintf("RunGo: %s", truncate(op.Code, 40))
	}
	return fmt.Sprintf("Unknown operation %q", op.Type)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SuggestMigrationName derives a migration name from a list of operations.
// The first operation's fragment names the migration; additional
// operations append "_and_more". When no operation contributes a fragment
// the name falls back to a timestamped auto name.
func SuggestMigrationName(ops []Operation, now time.Time) string {
	if len(ops) == 0 {
		return "auto_" + now.UTC().Format("20060102_1504")
	}
	fragment, ok := ops[0].NameFragment()
	if !ok {
		return "auto_" + now.UTC().Format("20060102_1504")
	}
	if len(ops) > 1 {
		return fragment + "_and_more"
	}
	return fragment
}

// operationWire is the JSON wire shape of Operation. The "column" and
// "columns" keys are polymorphic across variants (a ColumnDefinition for
// AddColumn, a plain string for DropColumn; column definitions for
// CreateTable, column names for CreateIndex), so both stay raw until the
// type tag has been read.
type operationWire struct {
	Type OperationType `json:"type"`

	Name        string          `json:"name,omitempty"`
	Columns     json.RawMessage `json:"columns,omitempty"`
	Constraints []string        `json:"constraints,omitempty"`
	BaseTable   string          `json:"base_table,omitempty"`
	JoinColumn  string          `json:"join_column,omitempty"`

	Table         string            `json:"table,omitempty"`
	Column        json.RawMessage   `json:"column,omitempty"`
	ColumnName    string            `json:"column_name,omitempty"`
	NewDefinition *ColumnDefinition `json:"new_definition,omitempty"`
	OldDefinition *ColumnDefinition `json:"old_definition,omitempty"`
	DefaultValue  string            `json:"default_value,omitempty"`

	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`

	ConstraintSQL  string `json:"constraint_sql,omitempty"`
	ConstraintName string `json:"constraint_name,omitempty"`
	Unique         bool   `json:"unique,omitempty"`
	Where          string `json:"where_clause,omitempty"`

	Comment        *string           `json:"comment,omitempty"`
	UniqueTogether [][]string        `json:"unique_together,omitempty"`
	Options        map[string]string `json:"options,omitempty"`

	SQL         string `json:"sql,omitempty"`
	ReverseSQL  string `json:"reverse_sql,omitempty"`
	Code        string `json:"code,omitempty"`
	ReverseCode string `json:"reverse_code,omitempty"`
}

// UnmarshalJSON decodes the tagged wire format, resolving the polymorphic
// "column"/"columns" keys according to the type tag.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var wire operationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Type == "" {
		return fmt.Errorf("operation is missing a type tag")
	}

	*op = Operation{
		Type:           wire.Type,
		Name:           wire.Name,
		Constraints:    wire.Constraints,
		BaseTable:      wire.BaseTable,
		JoinColumn:     wire.JoinColumn,
		Table:          wire.Table,
		ColumnName:     wire.ColumnName,
		OldDefinition:  wire.OldDefinition,
		DefaultValue:   wire.DefaultValue,
		OldName:        wire.OldName,
		NewName:        wire.NewName,
		ConstraintSQL:  wire.ConstraintSQL,
		ConstraintName: wire.ConstraintName,
		Unique:         wire.Unique,
		Where:          wire.Where,
		Comment:        wire.Comment,
		UniqueTogether: wire.UniqueTogether,
		Options:        wire.Options,
		SQL:            wire.SQL,
		ReverseSQL:     wire.ReverseSQL,
		Code:           wire.Code,
		ReverseCode:    wire.ReverseCode,
	}
	if wire.NewDefinition != nil {
		op.NewDefinition = *wire.NewDefinition
	}

	switch wire.Type {
	case OpCreateTable, OpCreateInheritedTable:
		if len(wire.Columns) > 0 {
			if err := json.Unmarshal(wire.Columns, &op.Columns); err != nil {
				return fmt.Errorf("%s columns: %w", wire.Type, err)
			}
		}
	case OpCreateIndex, OpDropIndex:
		if len(wire.Columns) > 0 {
			if err := json.Unmarshal(wire.Columns, &op.IndexColumns); err != nil {
				return fmt.Errorf("%s columns: %w", wire.Type, err)
			}
		}
	}

	switch wire.Type {
	case OpAddColumn:
		if len(wire.Column) > 0 {
			if err := json.Unmarshal(wire.Column, &op.Column); err != nil {
				return fmt.Errorf("AddColumn column: %w", err)
			}
		}
	case OpDropColumn, OpAlterColumn:
		if len(wire.Column) > 0 {
			if err := json.Unmarshal(wire.Column, &op.ColumnName); err != nil {
				return fmt.Errorf("%s column: %w", wire.Type, err)
			}
		}
	}

	return nil
}

// MarshalJSON encodes the tagged wire format.
func (op Operation) MarshalJSON() ([]byte, error) {
	wire := operationWire{
		Type:           op.Type,
		Name:           op.Name,
		Constraints:    op.Constraints,
		BaseTable:      op.BaseTable,
		JoinColumn:     op.JoinColumn,
		Table:          op.Table,
		ColumnName:     op.ColumnName,
		OldDefinition:  op.OldDefinition,
		DefaultValue:   op.DefaultValue,
		OldName:        op.OldName,
		NewName:        op.NewName,
		ConstraintSQL:  op.ConstraintSQL,
		ConstraintName: op.ConstraintName,
		Unique:         op.Unique,
		Where:          op.Where,
		Comment:        op.Comment,
		UniqueTogether: op.UniqueTogether,
		Options:        op.Options,
		SQL:            op.SQL,
		ReverseSQL:     op.ReverseSQL,
		Code:           op.Code,
		ReverseCode:    op.ReverseCode,
	}

	switch op.Type {
	case OpCreateTable, OpCreateInheritedTable:
		raw, err := json.Marshal(op.Columns)
		if err != nil {
			return nil, err
		}
		wire.Columns = raw
	case OpCreateIndex, OpDropIndex:
		raw, err := json.Marshal(op.IndexColumns)
		if err != nil {
			return nil, err
		}
		wire.Columns = raw
	case OpAddColumn:
		raw, err := json.Marshal(op.Column)
		if err != nil {
			return nil, err
		}
		wire.Column = raw
	case OpDropColumn:
		raw, err := json.Marshal(op.ColumnName)
		if err != nil {
			return nil, err
		}
		wire.Column = raw
		wire.ColumnName = ""
	case OpAlterColumn:
		raw, err := json.Marshal(op.ColumnName)
		if err != nil {
			return nil, err
		}
		wire.Column = raw
		wire.ColumnName = ""
		def := op.NewDefinition
		wire.NewDefinition = &def
	}

	return json.Marshal(wire)
}
