package dbshift

import (
	"sort"
	"strings"
)

// ModelKey identifies a model as (app label, model name).
type ModelKey struct {
	AppLabel string
	Model    string
}

// FieldState is the tracked state of one field of a model.
type FieldState struct {
	Name           string
	TypeDefinition string
	Nullable       bool
	PrimaryKey     bool
	Unique         bool
	AutoIncrement  bool
	Default        *string
}

// IndexState is the tracked state of one index on a model's table.
type IndexState struct {
	Columns []string
	Unique  bool
	Where   string
}

// ModelState is the tracked state of one model: its table name, fields,
// and table-level metadata accumulated from replayed operations.
type ModelState struct {
	AppLabel  string
	Name      string
	TableName string
	Fields    map[string]FieldState

	Options        map[string]string
	UniqueTogether [][]string
	Comment        *string
	Indexes        []IndexState
	Constraints    []string

	BaseTable           string
	JoinColumn          string
	DiscriminatorColumn string
}

// NewModelState returns an empty model for the given app and name.
func NewModelState(appLabel, name string) *ModelState {
	return &ModelState{
		AppLabel: appLabel,
		Name:     name,
		Fields:   map[string]FieldState{},
	}
}

// AddField inserts or replaces a field by name.
func (m *ModelState) AddField(f FieldState) {
	m.Fields[f.Name] = f
}

// RenameField renames a field, preserving its definition. A missing old
// name is a no-op.
func (m *ModelState) RenameField(oldName, newName string) {
	f, ok := m.Fields[oldName]
	if !ok {
		return
	}
	delete(m.Fields, oldName)
	f.Name = newName
	m.Fields[newName] = f
}

// FieldNames returns the model's field names in sorted order.
func (m *ModelState) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectState is the in-memory reconstruction of the current schema,
// derived purely from applied-migration replay. It is rebuilt on every
// request and never cached or mutated across calls.
type ProjectState struct {
	Models map[ModelKey]*ModelState
}

// NewProjectState returns an empty state.
func NewProjectState() *ProjectState {
	return &ProjectState{Models: map[ModelKey]*ModelState{}}
}

// AddModel inserts or replaces a model under its (app, name) key.
func (s *ProjectState) AddModel(m *ModelState) {
	s.Models[ModelKey{AppLabel: m.AppLabel, Model: m.Name}] = m
}

// GetModel looks a model up by app label and model name.
func (s *ProjectState) GetModel(appLabel, name string) (*ModelState, bool) {
	m, ok := s.Models[ModelKey{AppLabel: appLabel, Model: name}]
	return m, ok
}

// ModelByTable finds the model bound to the given table name.
func (s *ProjectState) ModelByTable(tableName string) (*ModelState, bool) {
	for _, m := range s.Models {
		if m.TableName == tableName {
			return m, true
		}
	}
	return nil, false
}

// SortedKeys returns the model keys in deterministic order.
func (s *ProjectState) SortedKeys() []ModelKey {
	keys := make([]ModelKey, 0, len(s.Models))
	for k := range s.Models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AppLabel != keys[j].AppLabel {
			return keys[i].AppLabel < keys[j].AppLabel
		}
		return keys[i].Model < keys[j].Model
	})
	return keys
}

// ApplyOperations replays a migration's operations, in list order, into
// the state. RunSQL and RunGo are opaque and leave tracked state alone.
func (s *ProjectState) ApplyOperations(ops []Operation, appLabel string) {
	for _, op := range ops {
		s.Apply(op, appLabel)
	}
}

// Apply mutates the state according to a single operation.
func (s *ProjectState) Apply(op Operation, appLabel string) {
	switch op.Type {
	case OpCreateTable:
		model := NewModelState(appLabel, TableToModelName(op.Name, appLabel))
		model.TableName = op.Name
		for _, col := range op.Columns {
			model.AddField(columnToFieldState(col))
		}
		model.Constraints = append(model.Constraints, op.Constraints...)
		s.AddModel(model)

	case OpCreateInheritedTable:
		model := NewModelState(appLabel, TableToModelName(op.Name, appLabel))
		model.TableName = op.Name
		model.BaseTable = op.BaseTable
		model.JoinColumn = op.JoinColumn
		for _, col := range op.Columns {
			model.AddField(columnToFieldState(col))
		}
		s.AddModel(model)

	case OpDropTable:
		for key, model := range s.Models {
			if model.TableName == op.Name {
				delete(s.Models, key)
			}
		}

	case OpAddColumn:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.AddField(columnToFieldState(op.Column))
		}

	case OpDropColumn:
		if model, ok := s.ModelByTable(op.Table); ok {
			delete(model.Fields, op.ColumnName)
		}

	case OpAlterColumn:
		field := columnToFieldState(op.NewDefinition)
		// The field keeps its original name even when the new definition
		// renames it; renames go through RenameColumn.
		field.Name = op.ColumnName
		if model, ok := s.ModelByTable(op.Table); ok {
			model.Fields[op.ColumnName] = field
			return
		}
		// Legacy migrations occasionally alter a column before the table's
		// CreateTable has been replayed. Materialize the model so the field
		// is not lost.
		model := NewModelState(appLabel, TableToModelName(op.Table, appLabel))
		model.TableName = op.Table
		model.AddField(field)
		s.AddModel(model)

	case OpRenameTable:
		if model, ok := s.ModelByTable(op.OldName); ok {
			model.TableName = op.NewName
		}

	case OpRenameColumn:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.RenameField(op.OldName, op.NewName)
		}

	case OpAddConstraint:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.Constraints = append(model.Constraints, op.ConstraintSQL)
		}

	case OpDropConstraint:
		if model, ok := s.ModelByTable(op.Table); ok {
			kept := model.Constraints[:0]
			for _, c := range model.Constraints {
				if !strings.Contains(c, op.ConstraintName) {
					kept = append(kept, c)
				}
			}
			model.Constraints = kept
		}

	case OpCreateIndex:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.Indexes = append(model.Indexes, IndexState{
				Columns: op.IndexColumns,
				Unique:  op.Unique,
				Where:   op.Where,
			})
		}

	case OpDropIndex:
		if model, ok := s.ModelByTable(op.Table); ok {
			kept := model.Indexes[:0]
			for _, idx := range model.Indexes {
				if !equalColumns(idx.Columns, op.IndexColumns) {
					kept = append(kept, idx)
				}
			}
			model.Indexes = kept
		}

	case OpAlterTableComment:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.Comment = op.Comment
		}

	case OpAlterUniqueTogether:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.UniqueTogether = op.UniqueTogether
		}

	case OpAlterModelOptions:
		if model, ok := s.ModelByTable(op.Table); ok {
			if model.Options == nil {
				model.Options = map[string]string{}
			}
			for k, v := range op.Options {
				model.Options[k] = v
			}
		}

	case OpAddDiscriminatorColumn:
		if model, ok := s.ModelByTable(op.Table); ok {
			model.DiscriminatorColumn = op.ColumnName
			defaultValue := op.DefaultValue
			model.AddField(FieldState{
				Name:           op.ColumnName,
				TypeDefinition: "VARCHAR(255)",
				Nullable:       false,
				Default:        &defaultValue,
			})
		}

	case OpRunSQL, OpRunGo:
		// Opaque; not tracked.
	}
}

func columnToFieldState(col ColumnDefinition) FieldState {
	return FieldState{
		Name:           col.Name,
		TypeDefinition: col.TypeDefinition,
		Nullable:       !col.NotNull,
		PrimaryKey:     col.PrimaryKey,
		Unique:         col.Unique,
		AutoIncrement:  col.AutoIncrement,
		Default:        col.Default,
	}
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TableToModelName converts a table name to a PascalCase model name,
// stripping a leading "<appLabel>_" prefix when present:
// ("auth_user", "auth") becomes "User",
// ("auth_password_reset_token", "auth") becomes "PasswordResetToken".
func TableToModelName(tableName, appLabel string) string {
	name := strings.TrimPrefix(tableName, appLabel+"_")
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
