package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/trigger"
)

// Session derives statements from entity descriptors and runs them on a
// driver. It remembers the values it loaded or inserted for every entity
// pointer, so that Update only writes what changed.
//
// A Session is one unit of work and is not safe for concurrent use.
type Session struct {
	drv      dialect.Driver
	reg      *schema.Registry
	dialect  Dialect
	now      func() time.Time
	log      *slog.Logger
	varchar  int
	snaps    map[any]map[string]any
	triggers *trigger.Dispatcher
}

// Option configures a Session.
type Option func(*Session)

// WithDialect overrides the dialect selected from the driver name.
func WithDialect(d Dialect) Option {
	return func(s *Session) { s.dialect = d }
}

// WithClock sets the clock of client-side timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger of snapshot and key bookkeeping, logged at
// debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithDefaultVarcharSize sets the size of varchar columns declared without
// one, on dialects that require a size.
func WithDefaultVarcharSize(n int) Option {
	return func(s *Session) { s.varchar = n }
}

// New returns a session running statements on drv for the entities of reg.
func New(drv dialect.Driver, reg *schema.Registry, opts ...Option) *Session {
	s := &Session{
		drv:      drv,
		reg:      reg,
		dialect:  DialectFor(drv.Dialect()),
		now:      time.Now,
		log:      slog.Default(),
		varchar:  field.DefaultSize,
		snaps:    make(map[any]map[string]any),
		triggers: &trigger.Dispatcher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver returns the driver of the session.
func (s *Session) Driver() dialect.Driver { return s.drv }

// Dialect returns the dialect of the session.
func (s *Session) Dialect() Dialect { return s.dialect }

// Registry returns the descriptor registry of the session.
func (s *Session) Registry() *schema.Registry { return s.reg }

// Descriptor returns the descriptor of entity e, a non-nil pointer to a
// registered struct.
func (s *Session) Descriptor(e any) (*schema.Descriptor, error) {
	rv := reflect.ValueOf(e)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, rowmap.NewSchemaConfigError("", "entity must be a non-nil pointer to a struct, got %T", e)
	}
	return s.reg.DescriptorOf(e)
}

// AddTrigger registers a session-level listener. Session listeners run
// before the listeners of the entity descriptor.
func (s *Session) AddTrigger(l trigger.Listener) { s.triggers.Add(l) }

// RemoveTrigger unregisters a session-level listener.
func (s *Session) RemoveTrigger(l trigger.Listener) bool { return s.triggers.Remove(l) }

// Attached reports whether the session holds a snapshot of e.
func (s *Session) Attached(e any) bool {
	_, ok := s.snaps[e]
	return ok
}

// Detach forgets the snapshot of e. The next Update of e writes every
// property that is set.
func (s *Session) Detach(e any) { delete(s.snaps, e) }

// Reset forgets every snapshot.
func (s *Session) Reset() { clear(s.snaps) }

func (s *Session) dispatch(ctx context.Context, d *schema.Descriptor, t trigger.Type, e any) {
	ev := trigger.Event{Type: t, Entity: e, Session: s}
	s.triggers.Dispatch(ctx, ev)
	d.Triggers().Dispatch(ctx, ev)
}

// record replaces the snapshot of e with the current values of fields.
func (s *Session) record(ctx context.Context, d *schema.Descriptor, e any, fields []*schema.Field) {
	snap := make(map[string]any, len(fields))
	for _, f := range fields {
		snap[f.Name] = beans.Clone(beans.Value(e, f.Name))
	}
	s.snaps[e] = snap
	s.log.DebugContext(ctx, "snapshot recorded", "entity", d.Name(), "fields", len(snap))
}

// patch updates the snapshotted fields of e that were written.
func (s *Session) patch(ctx context.Context, d *schema.Descriptor, e any, fields []*schema.Field) {
	snap, ok := s.snaps[e]
	if !ok {
		return
	}
	n := 0
	for _, f := range fields {
		if _, ok := snap[f.Name]; ok {
			snap[f.Name] = beans.Clone(beans.Value(e, f.Name))
			n++
		}
	}
	s.log.DebugContext(ctx, "snapshot patched", "entity", d.Name(), "fields", n)
}

func (s *Session) discard(ctx context.Context, d *schema.Descriptor, e any) {
	if _, ok := s.snaps[e]; ok {
		delete(s.snaps, e)
		s.log.DebugContext(ctx, "snapshot discarded", "entity", d.Name())
	}
}

// checkPK fails unless every primary key of e is present.
func checkPK(d *schema.Descriptor, e any) error {
	if !d.HasPK() {
		return rowmap.NewSchemaConfigError(d.Name(), "no primary key declared")
	}
	for _, f := range d.PKs() {
		if v := beans.Value(e, f.Name); missingKey(v) {
			return rowmap.NewMissingPrimaryKeyError(d.Name(), f.Name, v)
		}
	}
	return nil
}

// missingKey reports whether v is absent as a key value: nil, a number
// <= 0 or, for other types, the zero value.
func missingKey(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return rv.Int() <= 0
	case rv.CanUint():
		return rv.Uint() == 0
	case rv.CanFloat():
		return rv.Float() <= 0
	}
	return rv.IsZero()
}

// bind encodes the property value v of f. nil binds NULL.
func bind(d *schema.Descriptor, f *schema.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	out, err := f.Type.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("session: %s.%s: %w", d.Name(), f.Name, err)
	}
	return out, nil
}

// wherePK appends the primary key condition of e to b.
func wherePK(b *sql.Builder, d *schema.Descriptor, e any) error {
	b.WriteString(" WHERE ")
	for i, f := range d.PKs() {
		if i > 0 {
			b.WriteString(" AND ")
		}
		v, err := bind(d, f, beans.Value(e, f.Name))
		if err != nil {
			return err
		}
		b.WriteString(f.Column).WriteString("=").Arg(v)
	}
	return nil
}

// whereSet appends a condition AND-combining every set property of proto.
func whereSet(b *sql.Builder, d *schema.Descriptor, proto any) error {
	n := 0
	for _, f := range d.Fields() {
		if !beans.IsSet(proto, f.Name) {
			continue
		}
		v, err := bind(d, f, beans.Value(proto, f.Name))
		if err != nil {
			return err
		}
		if n == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(f.Column).WriteString("=").Arg(v)
		n++
	}
	return nil
}

func (s *Session) builder() *sql.Builder {
	return sql.NewBuilder(s.drv.Dialect())
}

// Query runs a statement returning rows and materializes them.
func (s *Session) Query(ctx context.Context, op, query string, args []any) ([]sql.Record, error) {
	var rows sql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, rowmap.NewStorageError(op, query, err)
	}
	recs, err := sql.ScanRecords(rows)
	if err != nil {
		return nil, rowmap.NewStorageError(op, query, err)
	}
	return recs, nil
}

// exec runs a statement and returns its result.
func (s *Session) exec(ctx context.Context, op, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, rowmap.NewStorageError(op, query, err)
	}
	return res, nil
}

// execCount runs a statement and returns the number of affected rows.
func (s *Session) execCount(ctx context.Context, op, query string, args []any) (int64, error) {
	res, err := s.exec(ctx, op, query, args)
	if err != nil {
		return 0, err
	}
	n, err := sql.RowsAffected(res)
	if err != nil {
		return 0, rowmap.NewStorageError(op, query, err)
	}
	return n, nil
}

// rollback rolls tx back and reports err with the rollback failure, if any.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("rolling back transaction: %w", rerr))
	}
	return err
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
