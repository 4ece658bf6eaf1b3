// Package dialect defines the relational connection contract used by the
// session and the query builder, and names the supported dialects.
//
// # Dialect Constants
//
//	dialect.ANSI     = "ansi"
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//	dialect.Oracle   = "oracle"
//	dialect.H2       = "h2"
//	dialect.Firebird = "firebird"
//
// The name selects statement details such as placeholder style, the
// server-side timestamp token, pagination and generated key retrieval.
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// For SQL drivers, args is []any, Exec scans into a *sql.Result and Query
// scans into a *sql.Rows from the dialect/sql package.
//
// # Transaction Interface
//
//	type Tx interface {
//	    ExecQuerier
//	    driver.Tx // Commit and Rollback
//	}
//
// The core opens a transaction only to create a table and its primary key.
package dialect
