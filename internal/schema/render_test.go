package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

func TestOperationSQL_CreateTable(t *testing.T) {
	op := dbshift.Operation{
		Type: dbshift.OpCreateTable,
		Name: "users_user",
		Columns: []dbshift.ColumnDefinition{
			{Name: "id", TypeDefinition: "BIGINT", PrimaryKey: true},
			{Name: "email", TypeDefinition: "VARCHAR(254)", NotNull: true, Unique: true},
		},
		Constraints: []string{"CONSTRAINT ck_email CHECK (email <> '')"},
	}

	stmts, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `CREATE TABLE "users_user" ("id" BIGINT PRIMARY KEY, "email" VARCHAR(254) NOT NULL UNIQUE)`, stmts[0])
	assert.Equal(t, `ALTER TABLE "users_user" ADD CONSTRAINT ck_email CHECK (email <> '')`, stmts[1])
}

func TestOperationSQL_ColumnDefault(t *testing.T) {
	def := "active"
	op := dbshift.Operation{
		Type:   dbshift.OpAddColumn,
		Table:  "users_user",
		Column: dbshift.ColumnDefinition{Name: "status", TypeDefinition: "VARCHAR(20)", NotNull: true, Default: &def},
	}

	stmts, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `ALTER TABLE "users_user" ADD COLUMN "status" VARCHAR(20) NOT NULL DEFAULT 'active'`, stmts[0])
}

func TestOperationSQL_AutoIncrementPerBackend(t *testing.T) {
	op := dbshift.Operation{
		Type: dbshift.OpCreateTable,
		Name: "t",
		Columns: []dbshift.ColumnDefinition{
			{Name: "id", TypeDefinition: "INTEGER", PrimaryKey: true, AutoIncrement: true},
		},
	}

	pg, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE "t" ("id" INTEGER PRIMARY KEY)`, pg[0])

	my, err := OperationSQL(NewMySQLEditor(), op)
	require.NoError(t, err)
	assert.Contains(t, my[0], "`id` INTEGER PRIMARY KEY AUTO_INCREMENT")

	lite, err := OperationSQL(NewSQLiteEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE "t" ("id" INTEGER PRIMARY KEY AUTOINCREMENT)`, lite[0])
}

func TestOperationSQL_AlterColumn(t *testing.T) {
	op := dbshift.Operation{
		Type:          dbshift.OpAlterColumn,
		Table:         "users_user",
		ColumnName:    "age",
		NewDefinition: dbshift.ColumnDefinition{Name: "age", TypeDefinition: "BIGINT"},
	}

	stmts, err := OperationSQL(NewMySQLEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `users_user` MODIFY COLUMN `age` BIGINT", stmts[0])
}

func TestOperationSQL_TableComment(t *testing.T) {
	comment := "accounts"
	op := dbshift.Operation{Type: dbshift.OpAlterTableComment, Table: "users_user", Comment: &comment}

	pg, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, `COMMENT ON TABLE "users_user" IS 'accounts'`, pg[0])

	my, err := OperationSQL(NewMySQLEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `users_user` COMMENT = 'accounts'", my[0])

	lite, err := OperationSQL(NewSQLiteEditor(), op)
	require.NoError(t, err)
	assert.Empty(t, lite)

	op.Comment = nil
	pg, err = OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, `COMMENT ON TABLE "users_user" IS NULL`, pg[0])
}

func TestOperationSQL_MetadataOpsEmitNothing(t *testing.T) {
	for _, op := range []dbshift.Operation{
		{Type: dbshift.OpAlterUniqueTogether, Table: "t", UniqueTogether: [][]string{{"a", "b"}}},
		{Type: dbshift.OpAlterModelOptions, Table: "t", Options: map[string]string{"ordering": "name"}},
		{Type: dbshift.OpRunGo, Code: "backfill"},
	} {
		stmts, err := OperationSQL(NewPostgresEditor(), op)
		require.NoError(t, err)
		assert.Empty(t, stmts, "operation %s", op.Type)
	}
}

func TestOperationSQL_RunSQLPassesThrough(t *testing.T) {
	op := dbshift.Operation{Type: dbshift.OpRunSQL, SQL: "UPDATE users_user SET active = true"}

	stmts, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "UPDATE users_user SET active = true", stmts[0])
}

func TestOperationSQL_CreateInheritedTable(t *testing.T) {
	op := dbshift.Operation{
		Type:       dbshift.OpCreateInheritedTable,
		Name:       "users_admin",
		BaseTable:  "users_user",
		JoinColumn: "user_id",
		Columns: []dbshift.ColumnDefinition{
			{Name: "level", TypeDefinition: "INT", NotNull: true},
		},
	}

	stmts, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `CREATE TABLE "users_admin" ("user_id" BIGINT PRIMARY KEY, "level" INT NOT NULL)`, stmts[0])
	assert.Equal(t, `ALTER TABLE "users_admin" ADD CONSTRAINT "users_admin_user_id_fk" FOREIGN KEY ("user_id") REFERENCES "users_user" ("user_id")`, stmts[1])
}

func TestOperationSQL_AddDiscriminatorColumn(t *testing.T) {
	op := dbshift.Operation{
		Type:         dbshift.OpAddDiscriminatorColumn,
		Table:        "users_user",
		ColumnName:   "kind",
		DefaultValue: "user",
	}

	stmts, err := OperationSQL(NewPostgresEditor(), op)
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "users_user" ADD COLUMN "kind" VARCHAR(255) NOT NULL DEFAULT 'user'`, stmts[0])
}

func TestOperationSQL_DropAndIndexOps(t *testing.T) {
	pg := NewPostgresEditor()

	stmts, err := OperationSQL(pg, dbshift.Operation{Type: dbshift.OpDropTable, Name: "users_user"})
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE "users_user" CASCADE`, stmts[0])

	stmts, err = OperationSQL(pg, dbshift.Operation{
		Type: dbshift.OpCreateIndex, Name: "ix_user_email", Table: "users_user",
		IndexColumns: []string{"email"}, Unique: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `CREATE UNIQUE INDEX "ix_user_email" ON "users_user" ("email")`, stmts[0])

	stmts, err = OperationSQL(pg, dbshift.Operation{Type: dbshift.OpDropIndex, Name: "ix_user_email", Table: "users_user"})
	require.NoError(t, err)
	assert.Equal(t, `DROP INDEX "ix_user_email"`, stmts[0])
}

func TestOperationSQL_UnknownType(t *testing.T) {
	_, err := OperationSQL(NewPostgresEditor(), dbshift.Operation{Type: "Teleport"})
	assert.Error(t, err)
}
