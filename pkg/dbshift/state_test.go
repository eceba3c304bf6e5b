package dbshift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsersState() *ProjectState {
	s := NewProjectState()
	s.Apply(Operation{
		Type: OpCreateTable,
		Name: "users_user",
		Columns: []ColumnDefinition{
			{Name: "id", TypeDefinition: "BIGINT", PrimaryKey: true, AutoIncrement: true},
			{Name: "email", TypeDefinition: "VARCHAR(254)", NotNull: true},
		},
	}, "users")
	return s
}

func TestApplyCreateAndDropTable(t *testing.T) {
	s := newUsersState()

	model, ok := s.GetModel("users", "User")
	require.True(t, ok)
	assert.Equal(t, "users_user", model.TableName)
	assert.Equal(t, []string{"email", "id"}, model.FieldNames())
	assert.True(t, model.Fields["id"].PrimaryKey)
	assert.False(t, model.Fields["email"].Nullable)

	s.Apply(Operation{Type: OpDropTable, Name: "users_user"}, "users")
	_, ok = s.GetModel("users", "User")
	assert.False(t, ok)
}

func TestApplyColumnOperations(t *testing.T) {
	s := newUsersState()
	model, _ := s.GetModel("users", "User")

	s.Apply(Operation{
		Type:   OpAddColumn,
		Table:  "users_user",
		Column: ColumnDefinition{Name: "age", TypeDefinition: "INTEGER"},
	}, "users")
	assert.Contains(t, model.Fields, "age")
	assert.True(t, model.Fields["age"].Nullable)

	s.Apply(Operation{
		Type:          OpAlterColumn,
		Table:         "users_user",
		ColumnName:    "age",
		NewDefinition: ColumnDefinition{Name: "age", TypeDefinition: "BIGINT", NotNull: true},
	}, "users")
	assert.Equal(t, "BIGINT", model.Fields["age"].TypeDefinition)
	assert.False(t, model.Fields["age"].Nullable)

	s.Apply(Operation{Type: OpDropColumn, Table: "users_user", ColumnName: "age"}, "users")
	assert.NotContains(t, model.Fields, "age")
}

func TestApplyAlterColumnMaterializesMissingModel(t *testing.T) {
	s := NewProjectState()
	s.Apply(Operation{
		Type:          OpAlterColumn,
		Table:         "blog_post",
		ColumnName:    "title",
		NewDefinition: ColumnDefinition{Name: "title", TypeDefinition: "TEXT"},
	}, "blog")

	model, ok := s.GetModel("blog", "Post")
	require.True(t, ok)
	assert.Equal(t, "blog_post", model.TableName)
	assert.Equal(t, "TEXT", model.Fields["title"].TypeDefinition)
}

func TestApplyRenames(t *testing.T) {
	s := newUsersState()

	s.Apply(Operation{
		Type:    OpRenameColumn,
		Table:   "users_user",
		OldName: "email",
		NewName: "primary_email",
	}, "users")
	model, _ := s.GetModel("users", "User")
	assert.NotContains(t, model.Fields, "email")
	require.Contains(t, model.Fields, "primary_email")
	assert.Equal(t, "VARCHAR(254)", model.Fields["primary_email"].TypeDefinition)

	s.Apply(Operation{Type: OpRenameTable, OldName: "users_user", NewName: "users_account"}, "users")
	assert.Equal(t, "users_account", model.TableName)
	_, ok := s.ModelByTable("users_account")
	assert.True(t, ok)
}

func TestApplyConstraints(t *testing.T) {
	s := newUsersState()
	model, _ := s.GetModel("users", "User")

	s.Apply(Operation{
		Type:          OpAddConstraint,
		Table:         "users_user",
		ConstraintSQL: "CONSTRAINT users_age_check CHECK (age >= 0)",
	}, "users")
	require.Len(t, model.Constraints, 1)

	s.Apply(Operation{
		Type:           OpDropConstraint,
		Table:          "users_user",
		ConstraintName: "users_age_check",
	}, "users")
	assert.Empty(t, model.Constraints)
}

func TestApplyIndexes(t *testing.T) {
	s := newUsersState()
	model, _ := s.GetModel("users", "User")

	s.Apply(Operation{
		Type:         OpCreateIndex,
		Table:        "users_user",
		IndexColumns: []string{"email"},
		Unique:       true,
	}, "users")
	s.Apply(Operation{
		Type:         OpCreateIndex,
		Table:        "users_user",
		IndexColumns: []string{"email", "id"},
	}, "users")
	require.Len(t, model.Indexes, 2)

	s.Apply(Operation{
		Type:         OpDropIndex,
		Table:        "users_user",
		IndexColumns: []string{"email"},
	}, "users")
	require.Len(t, model.Indexes, 1)
	assert.Equal(t, []string{"email", "id"}, model.Indexes[0].Columns)
}

func TestApplyModelMetadata(t *testing.T) {
	s := newUsersState()
	model, _ := s.GetModel("users", "User")

	comment := "account table"
	s.Apply(Operation{Type: OpAlterTableComment, Table: "users_user", Comment: &comment}, "users")
	require.NotNil(t, model.Comment)
	assert.Equal(t, "account table", *model.Comment)

	s.Apply(Operation{Type: OpAlterTableComment, Table: "users_user"}, "users")
	assert.Nil(t, model.Comment)

	s.Apply(Operation{
		Type:           OpAlterUniqueTogether,
		Table:          "users_user",
		UniqueTogether: [][]string{{"email", "id"}},
	}, "users")
	assert.Equal(t, [][]string{{"email", "id"}}, model.UniqueTogether)

	s.Apply(Operation{
		Type:    OpAlterModelOptions,
		Table:   "users_user",
		Options: map[string]string{"ordering": "-id"},
	}, "users")
	assert.Equal(t, "-id", model.Options["ordering"])
}

func TestApplyInheritance(t *testing.T) {
	s := newUsersState()

	s.Apply(Operation{
		Type:       OpCreateInheritedTable,
		Name:       "users_admin",
		BaseTable:  "users_user",
		JoinColumn: "user_ptr_id",
		Columns: []ColumnDefinition{
			{Name: "level", TypeDefinition: "INTEGER", NotNull: true},
		},
	}, "users")

	model, ok := s.GetModel("users", "Admin")
	require.True(t, ok)
	assert.Equal(t, "users_user", model.BaseTable)
	assert.Equal(t, "user_ptr_id", model.JoinColumn)
	assert.Contains(t, model.Fields, "level")

	s.Apply(Operation{
		Type:         OpAddDiscriminatorColumn,
		Table:        "users_user",
		ColumnName:   "kind",
		DefaultValue: "user",
	}, "users")
	base, _ := s.GetModel("users", "User")
	assert.Equal(t, "kind", base.DiscriminatorColumn)
	require.Contains(t, base.Fields, "kind")
	require.NotNil(t, base.Fields["kind"].Default)
	assert.Equal(t, "user", *base.Fields["kind"].Default)
}

func TestApplyEscapeHatchesLeaveStateAlone(t *testing.T) {
	s := newUsersState()
	before := s.SortedKeys()

	s.Apply(Operation{Type: OpRunSQL, SQL: "DROP TABLE users_user"}, "users")
	s.Apply(Operation{Type: OpRunGo, Code: "backfill_emails"}, "users")

	assert.Equal(t, before, s.SortedKeys())
	model, _ := s.GetModel("users", "User")
	assert.Equal(t, []string{"email", "id"}, model.FieldNames())
}

func TestSortedKeysDeterministic(t *testing.T) {
	s := NewProjectState()
	s.Apply(Operation{Type: OpCreateTable, Name: "blog_post"}, "blog")
	s.Apply(Operation{Type: OpCreateTable, Name: "users_user"}, "users")
	s.Apply(Operation{Type: OpCreateTable, Name: "blog_comment"}, "blog")

	assert.Equal(t, []ModelKey{
		{AppLabel: "blog", Model: "Comment"},
		{AppLabel: "blog", Model: "Post"},
		{AppLabel: "users", Model: "User"},
	}, s.SortedKeys())
}

func TestTableToModelName(t *testing.T) {
	tests := []struct {
		table string
		app   string
		want  string
	}{
		{"auth_user", "auth", "User"},
		{"auth_password_reset_token", "auth", "PasswordResetToken"},
		{"standalone", "auth", "Standalone"},
		{"blog_post", "users", "BlogPost"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TableToModelName(tt.table, tt.app))
	}
}
