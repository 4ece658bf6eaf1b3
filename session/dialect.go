package session

import (
	"strconv"
	"strings"

	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/schema"
)

// Dialect holds the behaviors that vary per target store.
//
// The implementations below are plain structs so that a custom dialect can
// embed one and override single methods:
//
//	type myPostgres struct{ session.Postgres }
//
//	func (myPostgres) NowToken() string { return "clock_timestamp()" }
type Dialect interface {
	// Name returns the dialect name, one of the dialect package constants
	// for the built-in implementations.
	Name() string
	// NowToken returns the SQL expression of the current time, or "" to
	// bind the client clock instead.
	NowToken() string
	// Paginate limits query to limit rows after skipping offset rows.
	// ordered reports whether query ends with an ORDER BY clause. A limit
	// <= 0 means no row cap and an offset <= 0 skips nothing; with both,
	// query is returned unchanged.
	Paginate(query string, ordered bool, limit, offset int) string
	// KeyStrategy tells how the generated key f of d is retrieved on insert.
	KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy
	// ColumnType overrides the schema type of f. When ok is false the
	// codec type (and size) is used.
	ColumnType(f *schema.Field) (typ string, ok bool)
	// UnlimitedVarchar reports whether varchar may be declared without a
	// size.
	UnlimitedVarchar() bool
	// InlinePrimaryKey reports whether CREATE TABLE declares the primary
	// key itself instead of a following ALTER TABLE.
	InlinePrimaryKey() bool
}

// KeyTiming is when and how a generated key is read.
type KeyTiming uint8

// Key timings.
const (
	// KeyNone means the field is not generated.
	KeyNone KeyTiming = iota
	// KeyBefore runs Query before the INSERT and binds its result.
	KeyBefore
	// KeyReturning appends a RETURNING clause to the INSERT.
	KeyReturning
	// KeyLastInsertID reads the driver's last insert id.
	KeyLastInsertID
	// KeyAfter runs Query after the INSERT.
	KeyAfter
	// KeyUnsupported fails the insert.
	KeyUnsupported
)

var timingNames = [...]string{"none", "before", "returning", "last_insert_id", "after", "unsupported"}

func (t KeyTiming) String() string {
	if int(t) < len(timingNames) {
		return timingNames[t]
	}
	return "KeyTiming(" + strconv.Itoa(int(t)) + ")"
}

// KeyStrategy is the retrieval of a generated key.
type KeyStrategy struct {
	Timing KeyTiming
	// Query is the statement run for KeyBefore and KeyAfter.
	Query string
}

// DialectFor returns the built-in dialect of the given name. Unknown names
// get ANSI.
func DialectFor(name string) Dialect {
	switch name {
	case dialect.MySQL:
		return MySQL{}
	case dialect.Postgres:
		return Postgres{}
	case dialect.Oracle:
		return Oracle{}
	case dialect.H2:
		return H2{}
	case dialect.Firebird:
		return Firebird{}
	case dialect.SQLite:
		return SQLite{}
	}
	return ANSI{}
}

// SequenceName returns the sequence of f: its declared name, or
// seq_<column>_<table>.
func SequenceName(d *schema.Descriptor, f *schema.Field) string {
	if f.Gen.Sequence != "" {
		return f.Gen.Sequence
	}
	return "seq_" + f.Column + "_" + d.Table()
}

func keyKind(f *schema.Field) schema.GenKind {
	if f == nil {
		return schema.GenNone
	}
	return f.Gen.Kind
}

// ANSI is the standard dialect and the base of the others.
type ANSI struct{}

func (ANSI) Name() string     { return dialect.ANSI }
func (ANSI) NowToken() string { return "" }

// Paginate appends LIMIT and OFFSET. OFFSET alone is valid standard SQL.
func (ANSI) Paginate(query string, _ bool, limit, offset int) string {
	return limitOffset(query, limit, offset, "")
}

// limitOffset appends LIMIT n OFFSET m. When only offset is set, noLimit
// is rendered as the row cap, or left out when empty.
func limitOffset(query string, limit, offset int, noLimit string) string {
	switch {
	case limit > 0:
		query += " LIMIT " + strconv.Itoa(limit)
	case offset > 0 && noLimit != "":
		query += " LIMIT " + noLimit
	}
	if offset > 0 {
		query += " OFFSET " + strconv.Itoa(offset)
	}
	return query
}

func (ANSI) KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyBefore, Query: "SELECT NEXT VALUE FOR " + SequenceName(d, f)}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyLastInsertID}
	}
	return KeyStrategy{}
}

func (ANSI) ColumnType(f *schema.Field) (string, bool) {
	if f.Gen.Kind == schema.GenAutoIncrement {
		return "integer", true
	}
	return "", false
}

func (ANSI) UnlimitedVarchar() bool { return false }
func (ANSI) InlinePrimaryKey() bool { return false }

// MySQL is the MySQL and MariaDB dialect.
type MySQL struct{ ANSI }

func (MySQL) Name() string     { return dialect.MySQL }
func (MySQL) NowToken() string { return "now()" }

// Paginate uses the largest row count as the cap of an offset without
// limit, since MySQL has no OFFSET without LIMIT.
func (MySQL) Paginate(query string, _ bool, limit, offset int) string {
	return limitOffset(query, limit, offset, "18446744073709551615")
}

func (MySQL) KeyStrategy(_ *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyUnsupported}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyLastInsertID}
	}
	return KeyStrategy{}
}

func (MySQL) ColumnType(f *schema.Field) (string, bool) {
	if f.Gen.Kind == schema.GenAutoIncrement {
		if f.Type.SQLType() == "bigint" {
			return "bigint AUTO_INCREMENT", true
		}
		return "integer AUTO_INCREMENT", true
	}
	return "", false
}

// InlinePrimaryKey is true since an AUTO_INCREMENT column must be a key
// when the table is created.
func (MySQL) InlinePrimaryKey() bool { return true }

// Postgres is the PostgreSQL dialect.
type Postgres struct{ ANSI }

func (Postgres) Name() string     { return dialect.Postgres }
func (Postgres) NowToken() string { return "current_timestamp" }

func (Postgres) KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		seq := f.Gen.Sequence
		if seq == "" {
			seq = d.Table() + "_seq"
		}
		return KeyStrategy{Timing: KeyBefore, Query: "SELECT nextval('" + seq + "')"}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyReturning}
	}
	return KeyStrategy{}
}

func (Postgres) ColumnType(f *schema.Field) (string, bool) {
	switch {
	case f.Gen.Kind == schema.GenAutoIncrement && f.Type.SQLType() == "bigint":
		return "bigserial", true
	case f.Gen.Kind == schema.GenAutoIncrement:
		return "serial", true
	case f.Type.Name() == "uuid":
		return "uuid", true
	case f.Type.SQLType() == "blob":
		return "bytea", true
	}
	return "", false
}

func (Postgres) UnlimitedVarchar() bool { return true }

// Oracle is the Oracle dialect.
type Oracle struct{ ANSI }

func (Oracle) Name() string     { return dialect.Oracle }
func (Oracle) NowToken() string { return "sysdate" }

// Paginate wraps the query since ROWNUM is assigned before ORDER BY runs.
// An offset numbers the rows in a second wrap and skips on that number.
func (Oracle) Paginate(query string, _ bool, limit, offset int) string {
	switch {
	case offset <= 0 && limit <= 0:
		return query
	case offset <= 0:
		return "SELECT * FROM (" + query + ") WHERE ROWNUM <= " + strconv.Itoa(limit)
	}
	inner := "SELECT q.*, ROWNUM rn FROM (" + query + ") q"
	if limit > 0 {
		inner += " WHERE ROWNUM <= " + strconv.Itoa(offset+limit)
	}
	return "SELECT * FROM (" + inner + ") WHERE rn > " + strconv.Itoa(offset)
}

func (Oracle) KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyBefore, Query: "SELECT " + SequenceName(d, f) + ".nextval FROM dual"}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyUnsupported}
	}
	return KeyStrategy{}
}

func (Oracle) ColumnType(*schema.Field) (string, bool) { return "", false }

// H2 is the H2 dialect.
type H2 struct{ ANSI }

func (H2) Name() string     { return dialect.H2 }
func (H2) NowToken() string { return "sysdate" }

func (H2) KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyBefore, Query: "SELECT NEXTVAL('" + SequenceName(d, f) + "')"}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyAfter, Query: "SELECT IDENTITY()"}
	}
	return KeyStrategy{}
}

func (H2) ColumnType(f *schema.Field) (string, bool) {
	if f.Gen.Kind == schema.GenAutoIncrement {
		return "integer AUTO_INCREMENT", true
	}
	return "", false
}

func (H2) UnlimitedVarchar() bool { return true }

// Firebird is the Firebird dialect.
type Firebird struct{ ANSI }

func (Firebird) Name() string     { return dialect.Firebird }
func (Firebird) NowToken() string { return "current_timestamp" }

// Paginate turns the leading SELECT into SELECT FIRST n SKIP m.
func (Firebird) Paginate(query string, _ bool, limit, offset int) string {
	const sel = "SELECT "
	if (limit <= 0 && offset <= 0) || len(query) < len(sel) || !strings.EqualFold(query[:len(sel)], sel) {
		return query
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if limit > 0 {
		sb.WriteString("FIRST " + strconv.Itoa(limit) + " ")
	}
	if offset > 0 {
		sb.WriteString("SKIP " + strconv.Itoa(offset) + " ")
	}
	sb.WriteString(query[len(sel):])
	return sb.String()
}

func (Firebird) KeyStrategy(d *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyBefore, Query: "SELECT NEXT VALUE FOR " + SequenceName(d, f) + " FROM RDB$DATABASE"}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyReturning}
	}
	return KeyStrategy{}
}

// SQLite is the SQLite dialect.
type SQLite struct{ ANSI }

func (SQLite) Name() string { return dialect.SQLite }

// Paginate renders LIMIT -1 as the cap of an offset without limit.
func (SQLite) Paginate(query string, _ bool, limit, offset int) string {
	return limitOffset(query, limit, offset, "-1")
}

func (SQLite) KeyStrategy(_ *schema.Descriptor, f *schema.Field) KeyStrategy {
	switch keyKind(f) {
	case schema.GenSequence:
		return KeyStrategy{Timing: KeyUnsupported}
	case schema.GenAutoIncrement:
		return KeyStrategy{Timing: KeyLastInsertID}
	}
	return KeyStrategy{}
}

// ColumnType declares auto-increment keys as "integer" so that they alias
// the rowid.
func (SQLite) ColumnType(f *schema.Field) (string, bool) {
	if f.Gen.Kind == schema.GenAutoIncrement {
		return "integer", true
	}
	return "", false
}

// InlinePrimaryKey is true since SQLite has no ALTER TABLE ADD PRIMARY KEY.
func (SQLite) InlinePrimaryKey() bool { return true }
