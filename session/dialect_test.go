package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/session"
)

func TestDialectFor(t *testing.T) {
	for _, name := range dialect.Names {
		assert.Equal(t, name, session.DialectFor(name).Name())
	}
	assert.Equal(t, dialect.ANSI, session.DialectFor("db2").Name())
}

func TestPaginate(t *testing.T) {
	const q = "SELECT id FROM users ORDER BY id ASC"
	tests := []struct {
		name          string
		dialect       session.Dialect
		limit, offset int
		want          string
	}{
		{"mysql limit", session.MySQL{}, 10, 0, q + " LIMIT 10"},
		{"mysql offset", session.MySQL{}, 0, 4, q + " LIMIT 18446744073709551615 OFFSET 4"},
		{"postgres limit offset", session.Postgres{}, 3, 6, q + " LIMIT 3 OFFSET 6"},
		{"postgres offset", session.Postgres{}, 0, 6, q + " OFFSET 6"},
		{"sqlite offset", session.SQLite{}, -1, 2, q + " LIMIT -1 OFFSET 2"},
		{"h2 limit offset", session.H2{}, 1, 1, q + " LIMIT 1 OFFSET 1"},
		{"ansi none", session.ANSI{}, 0, 0, q},
		{"ansi negative", session.ANSI{}, -1, -1, q},
		{"oracle limit", session.Oracle{}, 5, 0, "SELECT * FROM (" + q + ") WHERE ROWNUM <= 5"},
		{"oracle limit offset", session.Oracle{}, 5, 10,
			"SELECT * FROM (SELECT q.*, ROWNUM rn FROM (" + q + ") q WHERE ROWNUM <= 15) WHERE rn > 10"},
		{"oracle offset", session.Oracle{}, 0, 10, "SELECT * FROM (SELECT q.*, ROWNUM rn FROM (" + q + ") q) WHERE rn > 10"},
		{"oracle none", session.Oracle{}, 0, 0, q},
		{"firebird limit", session.Firebird{}, 2, 0, "SELECT FIRST 2 id FROM users ORDER BY id ASC"},
		{"firebird limit offset", session.Firebird{}, 2, 8, "SELECT FIRST 2 SKIP 8 id FROM users ORDER BY id ASC"},
		{"firebird offset", session.Firebird{}, 0, 8, "SELECT SKIP 8 id FROM users ORDER BY id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Paginate(q, true, tt.limit, tt.offset))
		})
	}
	assert.Equal(t, "SELECT FIRST 1 * FROM t", session.Firebird{}.Paginate("select * FROM t", false, 1, 0))
	assert.Equal(t, "WITH x AS (SELECT 1) SELECT * FROM x", session.Firebird{}.Paginate("WITH x AS (SELECT 1) SELECT * FROM x", false, 1, 0))
}

func TestNowToken(t *testing.T) {
	tests := map[string]string{
		dialect.ANSI:     "",
		dialect.MySQL:    "now()",
		dialect.Postgres: "current_timestamp",
		dialect.Oracle:   "sysdate",
		dialect.H2:       "sysdate",
		dialect.Firebird: "current_timestamp",
		dialect.SQLite:   "",
	}
	for name, want := range tests {
		assert.Equal(t, want, session.DialectFor(name).NowToken(), name)
	}
}

func TestKeyTimingString(t *testing.T) {
	assert.Equal(t, "none", session.KeyNone.String())
	assert.Equal(t, "returning", session.KeyReturning.String())
	assert.Equal(t, "last_insert_id", session.KeyLastInsertID.String())
	assert.Equal(t, "KeyTiming(42)", session.KeyTiming(42).String())
}

type clockPostgres struct{ session.Postgres }

func (clockPostgres) NowToken() string { return "clock_timestamp()" }

func TestEmbeddedDialect(t *testing.T) {
	var d session.Dialect = clockPostgres{}
	assert.Equal(t, dialect.Postgres, d.Name())
	assert.Equal(t, "clock_timestamp()", d.NowToken())
	assert.True(t, d.UnlimitedVarchar())
	assert.Equal(t, "SELECT 1 LIMIT 1", d.Paginate("SELECT 1", false, 1, 0))
}
