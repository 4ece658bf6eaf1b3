package query

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"reflect"
	"slices"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/session"
)

// ExecuteQuery runs the statement and builds one entity of the FROM alias
// per row. Joined aliases registered with InProperty or PKProperty are
// populated into their holders, and sentences with a property are stored
// in it. The entities are not attached to the session.
func (q Query) ExecuteQuery(ctx context.Context) ([]any, error) {
	st := q.st
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	recs, err := st.b.sess.Query(ctx, "query", query, args)
	if err != nil {
		return nil, err
	}
	from := st.from.desc
	out := make([]any, 0, len(recs))
	for _, rec := range recs {
		e := from.New()
		if err := st.populate(rec, st.from, e, nil); err != nil {
			return nil, err
		}
		for _, s := range st.sentences() {
			if s.prop == "" {
				continue
			}
			v, err := s.decode(rec)
			if err != nil {
				return nil, err
			}
			if v == nil && !beans.Get(e, s.prop).IsValid() {
				continue
			}
			if err := beans.Set(e, s.prop, v, from.AbstractType); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (st *stmt) populate(rec sql.Record, a *Alias, e any, path []*Alias) error {
	if st.selects(a) {
		if err := session.Populate(rec, e, a.desc, a.name, a.proj); err != nil {
			return err
		}
	}
	path = append(path, a)
	for _, n := range st.nests {
		if n.holder != a || n.target.desc == nil || slices.Contains(path, n.target) || !st.selects(n.target) {
			continue
		}
		child, err := beans.Child(e, n.prop, n.force, a.desc.AbstractType)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		if t := reflect.TypeOf(child).Elem(); t != n.target.desc.Type() {
			return rowmap.NewSchemaConfigError(a.desc.Name(), "property %q is a %s, alias %s is a %s", n.prop, t, n.target.name, n.target.desc.Name())
		}
		if err := st.populate(rec, n.target, child, path); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteSentence runs a statement selecting exactly one sentence and
// returns its value. No row returns nil and more than one row is an
// AmbiguousResultError.
func (q Query) ExecuteSentence(ctx context.Context) (any, error) {
	st := q.st
	ss := st.sentences()
	if len(ss) != 1 {
		return nil, rowmap.NewMalformedQueryError("ExecuteSentence needs exactly one selected sentence, got %d", len(ss))
	}
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	recs, err := st.b.sess.Query(ctx, "sentence", query, args)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return ss[0].decode(recs[0])
	default:
		return nil, rowmap.NewAmbiguousResultError(ss[0].name, len(recs))
	}
}

// Execute is ExecuteQuery with the entities typed as *T.
func Execute[T any](ctx context.Context, q Statement) ([]*T, error) {
	list, err := Query{q.statement()}.ExecuteQuery(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(list))
	for i, e := range list {
		t, ok := e.(*T)
		if !ok {
			return nil, fmt.Errorf("query: FROM entity is %T, not %T", e, t)
		}
		out[i] = t
	}
	return out, nil
}

// Prepared is a statement prepared on the session connection.
type Prepared struct {
	Stmt  *stdsql.Stmt
	Query string
	Args  []any
}

// Records runs the prepared statement with its arguments.
func (p *Prepared) Records(ctx context.Context) ([]sql.Record, error) {
	rows, err := p.Stmt.QueryContext(ctx, p.Args...)
	if err != nil {
		return nil, rowmap.NewStorageError("query", p.Query, err)
	}
	recs, err := sql.ScanRecords(rows)
	if err != nil {
		return nil, rowmap.NewStorageError("query", p.Query, err)
	}
	return recs, nil
}

// Close releases the statement.
func (p *Prepared) Close() error { return p.Stmt.Close() }

// Prepare renders the statement and prepares it. The session driver must
// be a *sql.Driver, not a wrapper.
func (q Query) Prepare(ctx context.Context) (*Prepared, error) {
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	drv := q.st.b.sess.Driver()
	p, ok := drv.(interface {
		Prepare(context.Context, string) (*stdsql.Stmt, error)
	})
	if !ok {
		return nil, fmt.Errorf("query: driver %T cannot prepare statements", drv)
	}
	stmt, err := p.Prepare(ctx, query)
	if err != nil {
		return nil, rowmap.NewStorageError("prepare", query, err)
	}
	return &Prepared{Stmt: stmt, Query: query, Args: args}, nil
}
