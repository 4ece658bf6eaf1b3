package cli

import (
	"context"
	"fmt"

	// Drivers selectable with --driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/sample"
	"github.com/syssam/rowmap/session"
)

// conn is an open database with the sample model.
type conn struct {
	drv   *sql.Driver
	stats *sql.StatsDriver
	sess  *session.Session
}

// open connects with the configured driver. Statements are counted, slow
// ones logged and, with debug set, every statement is logged.
func (o *RootOptions) open(ctx context.Context) (*conn, error) {
	cfg := o.Config
	drv, err := sql.OpenDriver(cfg.Dialect, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.Dialect == dialect.SQLite {
		drv.DB().SetMaxOpenConns(1)
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		drv.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	statsOpts := []sql.StatsOption{sql.WithSlowQueryLog(o.Logger)}
	if cfg.SlowThreshold > 0 {
		statsOpts = append(statsOpts, sql.WithSlowThreshold(cfg.SlowThreshold))
	}
	stats := sql.NewStatsDriver(drv, statsOpts...)
	var wrapped dialect.Driver = stats
	if cfg.Debug {
		wrapped = sql.NewDebugDriver(stats, sql.DebugWithLogger(o.Logger))
	}
	return &conn{
		drv:   drv,
		stats: stats,
		sess:  session.New(wrapped, sample.Registry(), session.WithLogger(o.Logger)),
	}, nil
}

func (c *conn) Close() error { return c.drv.Close() }
