package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/session"
)

type Account struct {
	ID      int64
	Email   string
	Nick    string
	Balance float64
	Active  bool
	Kind    string
	Token   uuid.UUID
	Avatar  []byte
	Created time.Time
}

func accounts() *schema.Descriptor {
	return schema.New[Account]("").
		PK("ID", field.Int64(), schema.AutoIncrement()).
		Field("Email", field.StringSize(120)).
		Field("Nick", field.String()).
		Field("Balance", field.Float()).
		Field("Active", field.Bool()).
		Field("Kind", field.Enum("free", "premium")).
		Field("Token", field.UUID()).
		Field("Avatar", field.Bytes()).
		Field("Created", field.Timestamp(), schema.NowOnInsert()).
		MustBuild()
}

func TestStatementsGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	d := accounts()
	for _, name := range dialect.Names {
		t.Run(name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			s := session.New(sql.OpenDB(name, db), schema.NewRegistry().MustRegister(d))
			stmts, err := s.Statements(d)
			require.NoError(t, err)
			g.Assert(t, "ddl_"+name, []byte(strings.Join(stmts, ";\n")+";\n"))
		})
	}
}

func TestColumnTypes(t *testing.T) {
	type Row struct {
		ID    int
		Code  string
		State string
		Flag  bool
	}
	d := schema.New[Row]("rows").
		PK("ID", field.Int()).
		Field("Code", field.String()).
		Field("State", field.EnumID("on", "off")).
		Field("Flag", field.BoolString()).
		MustBuild()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := session.New(sql.OpenDB(dialect.ANSI, db), schema.NewRegistry().MustRegister(d), session.WithDefaultVarcharSize(64))

	table, err := s.Table(d)
	require.NoError(t, err)
	require.Len(t, table.Columns, 4)
	assert.Equal(t, "id integer NOT NULL", table.Columns[0].SQL())
	assert.Equal(t, "code varchar(64)", table.Columns[1].SQL())
	assert.Equal(t, "state smallint", table.Columns[2].SQL(), "only varchar takes the default size")
	assert.Equal(t, "flag varchar(1) NOT NULL", table.Columns[3].SQL())
	require.Len(t, table.PrimaryKey, 1)
}

func TestGenericFieldHasNoTable(t *testing.T) {
	type Doc struct {
		ID   int64
		Body any
	}
	d := schema.New[Doc]("docs").
		PK("ID", field.Int64()).
		Field("Body", field.Generic()).
		MustBuild()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := session.New(sql.OpenDB(dialect.MySQL, db), schema.NewRegistry().MustRegister(d))
	err = s.CreateTable(context.Background(), d)
	assert.True(t, rowmap.IsSchemaConfigError(err))
	assert.ErrorContains(t, err, `"Body"`)
}

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	create := "CREATE TABLE users (id integer NOT NULL, username varchar(200), age integer NOT NULL, insert_time timestamp)"
	alter := "ALTER TABLE users ADD PRIMARY KEY (id)"

	t.Run("commit", func(t *testing.T) {
		s, mock := mockSession(t, dialect.ANSI)
		mock.ExpectBegin()
		mock.ExpectExec(escape(create)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(escape(alter)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		require.NoError(t, s.CreateTable(ctx, s.Registry().MustLookup(&User{})))
	})

	t.Run("rollback", func(t *testing.T) {
		s, mock := mockSession(t, dialect.ANSI)
		mock.ExpectBegin()
		mock.ExpectExec(escape(create)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(escape(alter)).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()
		err := s.CreateTable(ctx, s.Registry().MustLookup(&User{}))
		require.Error(t, err)
		assert.True(t, rowmap.IsStorageError(err))
		assert.ErrorContains(t, err, "duplicate key")
	})

	t.Run("drop", func(t *testing.T) {
		s, mock := mockSession(t, dialect.ANSI)
		mock.ExpectExec(escape("DROP TABLE users")).WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, s.DropTable(ctx, s.Registry().MustLookup(&User{})))
	})
}

func TestCreateTablesValidates(t *testing.T) {
	type Log struct {
		Line string
	}
	type Entry struct {
		Text string
	}
	reg := schema.NewRegistry().MustRegister(
		schema.New[Log]("logs").Field("Line", field.String()).MustBuild(),
		schema.New[Entry]("LOGS").Field("Text", field.String()).MustBuild(),
	)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := session.New(sql.OpenDB(dialect.SQLite, db), reg)
	err = s.CreateTables(context.Background())
	assert.True(t, rowmap.IsSchemaConfigError(err))
	assert.ErrorContains(t, err, "duplicate table name")
	require.NoError(t, mock.ExpectationsWereMet())
}
