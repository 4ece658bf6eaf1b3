// Package sql implements the relational connection on top of database/sql.
//
// # Drivers
//
// Driver adapts a *sql.DB to the dialect.Driver contract used by the
// session and the query builder:
//
//	drv, err := sql.Open(dialect.SQLite, "file::memory:")
//	drv, err := sql.OpenDriver(dialect.Postgres, "pgx", dsn)
//	drv := sql.OpenDB(dialect.MySQL, db)
//
// Exec scans into a *sql.Result and Query into a *Rows. ScanRecords
// materializes rows into Records, which codecs read by column name or
// index.
//
// # Builder
//
// Builder accumulates statement text and positional arguments, writing
// "$n" placeholders for PostgreSQL and "?" everywhere else:
//
//	b := sql.NewBuilder(dialect.Postgres)
//	b.WriteString("SELECT id FROM users WHERE username=").Arg("saoj")
//	query, args := b.Query() // SELECT id FROM users WHERE username=$1, [saoj]
//
// # Observability
//
// StatsDriver counts statements and reports slow ones; DebugDriver logs
// every statement through log/slog:
//
//	drv = sql.NewDebugDriver(sql.NewStatsDriver(drv, sql.WithSlowQueryLog(nil)))
package sql
