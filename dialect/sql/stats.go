package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/syssam/rowmap/dialect"
)

// Kind classifies a statement by its leading keyword.
type Kind uint8

// Statement kinds.
const (
	KindOther Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindDDL
	numKinds
)

var kindNames = [numKinds]string{"other", "select", "insert", "update", "delete", "ddl"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindOf returns the kind of query. Statements wrapped by a dialect
// pagination still start with SELECT.
func KindOf(query string) Kind {
	word, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	switch strings.ToUpper(word) {
	case "SELECT", "WITH":
		return KindSelect
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	case "CREATE", "DROP", "ALTER":
		return KindDDL
	}
	return KindOther
}

// Counters holds the statement counters of a StatsDriver.
type Counters struct {
	queries atomic.Int64
	execs   atomic.Int64
	failed  atomic.Int64
	slow    atomic.Int64
	elapsed atomic.Int64 // nanoseconds
	kinds   [numKinds]atomic.Int64
}

// Snapshot returns a copy of the current counters.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Queries: c.queries.Load(),
		Execs:   c.execs.Load(),
		Failed:  c.failed.Load(),
		Slow:    c.slow.Load(),
		Elapsed: time.Duration(c.elapsed.Load()),
	}
	for k := range c.kinds {
		s.Kinds[k] = c.kinds[k].Load()
	}
	return s
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	for _, n := range []*atomic.Int64{&c.queries, &c.execs, &c.failed, &c.slow, &c.elapsed} {
		n.Store(0)
	}
	for k := range c.kinds {
		c.kinds[k].Store(0)
	}
}

func (c *Counters) add(kind Kind, query bool, d time.Duration, failed, slow bool) {
	if query {
		c.queries.Add(1)
	} else {
		c.execs.Add(1)
	}
	c.kinds[kind].Add(1)
	c.elapsed.Add(int64(d))
	if failed {
		c.failed.Add(1)
	}
	if slow {
		c.slow.Add(1)
	}
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Queries int64
	Execs   int64
	Failed  int64
	Slow    int64
	Elapsed time.Duration
	// Kinds counts statements per Kind.
	Kinds [numKinds]int64
}

// Kind returns the number of statements of kind k.
func (s Snapshot) Kind(k Kind) int64 {
	if k < numKinds {
		return s.Kinds[k]
	}
	return 0
}

// String renders the counters as key=value pairs, kinds without
// statements left out.
func (s Snapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "queries=%d execs=%d failed=%d slow=%d elapsed=%s", s.Queries, s.Execs, s.Failed, s.Slow, s.Elapsed)
	for k, n := range s.Kinds {
		if n > 0 {
			fmt.Fprintf(&sb, " %s=%d", Kind(k), n)
		}
	}
	return sb.String()
}

// StatsDriver wraps a driver and counts the statements it runs.
type StatsDriver struct {
	dialect.Driver
	counters  Counters
	threshold time.Duration
	logger    *slog.Logger
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryLog logs slow statements to logger, or slog.Default if nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return func(s *StatsDriver) { s.logger = logger }
}

// NewStatsDriver wraps drv with statement counters.
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	sd := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(nil))
//	sess := session.New(sd, registry)
//	fmt.Println(sd.Counters().Snapshot())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counters returns the counters of the driver.
func (d *StatsDriver) Counters() *Counters { return &d.counters }

// Query runs a query and counts it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, query, args, true, start, err)
	return err
}

// Exec runs a statement and counts it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, args, false, start, err)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, args any, isQuery bool, start time.Time, err error) {
	elapsed := time.Since(start)
	kind := KindOf(query)
	slow := elapsed > d.threshold
	d.counters.add(kind, isQuery, elapsed, err != nil, slow)
	if slow && d.logger != nil {
		d.logger.WarnContext(ctx, "slow statement", "kind", kind, "duration", elapsed, "sql", query, "args", args)
	}
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction of a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query runs a query within the transaction and counts it.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.record(ctx, query, args, true, start, err)
	return err
}

// Exec runs a statement within the transaction and counts it.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, query, args, false, start, err)
	return err
}

// DebugDriver logs every statement before passing it to the wrapped driver.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
	level  slog.Level
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger. Default is slog.Default.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		d.logger = logger
	}
}

// DebugWithLevel sets the level statements are logged at. Default is Info.
func DebugWithLevel(level slog.Level) DebugOption {
	return func(d *DebugDriver) {
		d.level = level
	}
}

// NewDebugDriver wraps drv with statement logging.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv, logger: slog.Default(), level: slog.LevelInfo}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugDriver) log(ctx context.Context, msg string, attrs ...any) {
	d.logger.Log(ctx, d.level, msg, attrs...)
}

// Query logs and executes a query.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log(ctx, "query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec logs and executes a statement.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log(ctx, "exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with debug logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, drv: d}, nil
}

// DebugTx wraps a transaction with debug logging.
type DebugTx struct {
	dialect.Tx
	drv *DebugDriver
}

// Query logs and executes a query within the transaction.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.drv.log(ctx, "tx query", "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec logs and executes a statement within the transaction.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.drv.log(ctx, "tx exec", "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit commits the transaction and logs it.
func (tx *DebugTx) Commit() error {
	tx.drv.log(context.Background(), "commit transaction")
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction and logs it.
func (tx *DebugTx) Rollback() error {
	tx.drv.log(context.Background(), "rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
