package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersTable() *Table {
	return NewTable("users").
		AddPrimary(&Column{Name: "id", Type: "integer AUTO_INCREMENT"}).
		AddColumn(&Column{Name: "username", Type: "varchar", Size: 200, Nullable: true}).
		AddColumn(&Column{Name: "active", Type: "boolean"}).
		AddColumn(&Column{Name: "insert_time", Type: "timestamp", Nullable: true})
}

func TestColumnSQL(t *testing.T) {
	tests := []struct {
		col  Column
		want string
	}{
		{Column{Name: "id", Type: "integer"}, "id integer NOT NULL"},
		{Column{Name: "name", Type: "varchar", Size: 50, Nullable: true}, "name varchar(50)"},
		{Column{Name: "name", Type: "varchar", Nullable: true}, "name varchar"},
		{Column{Name: "flag", Type: "varchar", Size: 1}, "flag varchar(1) NOT NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.col.SQL())
		})
	}
}

func TestTableStatements(t *testing.T) {
	tbl := usersTable()

	assert.Equal(t,
		"CREATE TABLE users (id integer AUTO_INCREMENT NOT NULL, username varchar(200), active boolean NOT NULL, insert_time timestamp)",
		tbl.CreateSQL(false))
	assert.Equal(t, "ALTER TABLE users ADD PRIMARY KEY (id)", tbl.AddPrimaryKeySQL())
	assert.Equal(t, "DROP TABLE users", tbl.DropSQL())
	assert.Len(t, tbl.Statements(false), 2)

	inline := tbl.Statements(true)
	require.Len(t, inline, 1)
	assert.Equal(t,
		"CREATE TABLE users (id integer AUTO_INCREMENT NOT NULL, username varchar(200), active boolean NOT NULL, insert_time timestamp, PRIMARY KEY (id))",
		inline[0])

	c, ok := tbl.Column("username")
	require.True(t, ok)
	assert.Equal(t, 200, c.Size)
	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestCompositePrimaryKey(t *testing.T) {
	tbl := NewTable("memberships").
		AddPrimary(&Column{Name: "user_id", Type: "integer"}).
		AddPrimary(&Column{Name: "group_id", Type: "integer"})
	assert.Equal(t, "ALTER TABLE memberships ADD PRIMARY KEY (user_id, group_id)", tbl.AddPrimaryKeySQL())

	noPK := NewTable("logs").AddColumn(&Column{Name: "line", Type: "varchar"})
	assert.Empty(t, noPK.AddPrimaryKeySQL())
	assert.Equal(t, []string{"CREATE TABLE logs (line varchar NOT NULL)"}, noPK.Statements(false))
}

func TestValidateTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := ValidateTable(usersTable())
		assert.False(t, r.HasErrors())
		assert.False(t, r.HasWarnings())
		assert.NoError(t, r.Err())
		assert.Equal(t, "No issues found", r.String())
	})

	t.Run("problems", func(t *testing.T) {
		tbl := NewTable("things").
			AddColumn(&Column{Name: "name", Type: "varchar"}).
			AddColumn(&Column{Name: "NAME", Type: "varchar"}).
			AddColumn(&Column{Name: "payload"})
		r := ValidateTable(tbl)
		require.Len(t, r.Errors, 2)
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "things.NAME: duplicate column name", r.Errors[0].Error())
		assert.Equal(t, "things.payload: column has no schema type", r.Errors[1].Error())
		assert.Equal(t, "things: table has no primary key", r.Warnings[0].Error())
		assert.EqualError(t, r.Err(), "schema: things.NAME: duplicate column name; things.payload: column has no schema type")
		assert.Contains(t, r.String(), "Errors:\n  - things.NAME: duplicate column name\n")
		assert.Contains(t, r.String(), "Warnings:\n  - things: table has no primary key\n")
	})

	t.Run("nullable key", func(t *testing.T) {
		tbl := NewTable("t").AddPrimary(&Column{Name: "id", Type: "integer", Nullable: true})
		r := ValidateTable(tbl)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "t.id: primary key column is nullable", r.Errors[0].Error())
	})

	t.Run("empty", func(t *testing.T) {
		r := ValidateTable(NewTable("empty"))
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "empty: table has no columns", r.Errors[0].Error())
	})
}

func TestValidateSchema(t *testing.T) {
	r := ValidateSchema([]*Table{usersTable(), usersTable()})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "users: duplicate table name", r.Errors[0].Error())
}
