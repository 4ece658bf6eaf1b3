package session

import (
	"context"
	"errors"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

var errUnexpectedShape = errors.New("session: count returned an unexpected result")

// LoadOption configures Load, LoadList and CountList.
type LoadOption func(*loadOptions)

type order struct {
	prop string
	desc bool
}

type loadOptions struct {
	proj   Projection
	orders []order
	limit  int
}

func newLoadOptions(opts []LoadOption) *loadOptions {
	o := &loadOptions{limit: -1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Include selects only the given properties, besides the primary keys.
func Include(props ...string) LoadOption {
	return func(o *loadOptions) { o.proj.Include = append(o.proj.Include, props...) }
}

// Exclude leaves the given properties out.
func Exclude(props ...string) LoadOption {
	return func(o *loadOptions) { o.proj.Exclude = append(o.proj.Exclude, props...) }
}

// Asc orders a list by prop, ascending.
func Asc(prop string) LoadOption {
	return func(o *loadOptions) { o.orders = append(o.orders, order{prop: prop}) }
}

// Desc orders a list by prop, descending.
func Desc(prop string) LoadOption {
	return func(o *loadOptions) { o.orders = append(o.orders, order{prop: prop, desc: true}) }
}

// Limit caps the number of rows of a list. Zero returns nothing without
// querying the store and a negative n removes the cap.
func Limit(n int) LoadOption {
	return func(o *loadOptions) { o.limit = n }
}

// Load reads the row of e by primary key into e and records its snapshot.
// It reports false if no row matched.
func (s *Session) Load(ctx context.Context, e any, opts ...LoadOption) (bool, error) {
	d, err := s.Descriptor(e)
	if err != nil {
		return false, err
	}
	if err := checkPK(d, e); err != nil {
		return false, err
	}
	o := newLoadOptions(opts)
	b := s.builder()
	b.WriteString("SELECT ").WriteString(BuildSelect(d, "", o.proj)).WriteString(" FROM ").WriteString(d.Table())
	if err := wherePK(b, d, e); err != nil {
		return false, err
	}
	query, args := b.Query()
	recs, err := s.Query(ctx, "load", query, args)
	if err != nil {
		return false, err
	}
	switch len(recs) {
	case 0:
		return false, nil
	case 1:
	default:
		return false, rowmap.NewAmbiguousResultError(d.Name(), len(recs))
	}
	if err := Populate(recs[0], e, d, "", o.proj); err != nil {
		return false, err
	}
	s.record(ctx, d, e, o.proj.Fields(d))
	return true, nil
}

// LoadList returns the entities matching every set property of proto.
// Listed entities carry no snapshot.
func (s *Session) LoadList(ctx context.Context, proto any, opts ...LoadOption) ([]any, error) {
	d, err := s.Descriptor(proto)
	if err != nil {
		return nil, err
	}
	o := newLoadOptions(opts)
	if o.limit == 0 {
		return []any{}, nil
	}
	b := s.builder()
	b.WriteString("SELECT ").WriteString(BuildSelect(d, "", o.proj)).WriteString(" FROM ").WriteString(d.Table())
	if err := whereSet(b, d, proto); err != nil {
		return nil, err
	}
	for i, ord := range o.orders {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.Comma()
		}
		b.WriteString(PropertyToColumn(d, ord.prop))
		if ord.desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	query, args := b.Query()
	query = s.dialect.Paginate(query, len(o.orders) > 0, o.limit, 0)
	recs, err := s.Query(ctx, "list", query, args)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(recs))
	for _, rec := range recs {
		e := d.New()
		if err := Populate(rec, e, d, "", o.proj); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, nil
}

// CountList counts the rows matching every set property of proto.
func (s *Session) CountList(ctx context.Context, proto any, opts ...LoadOption) (int, error) {
	d, err := s.Descriptor(proto)
	if err != nil {
		return 0, err
	}
	if newLoadOptions(opts).limit == 0 {
		return 0, nil
	}
	b := s.builder()
	b.WriteString("SELECT count(1) FROM ").WriteString(d.Table())
	if err := whereSet(b, d, proto); err != nil {
		return 0, err
	}
	query, args := b.Query()
	recs, err := s.Query(ctx, "count", query, args)
	if err != nil {
		return 0, err
	}
	if len(recs) != 1 || recs[0].Len() != 1 {
		return 0, rowmap.NewStorageError("count", query, errUnexpectedShape)
	}
	n, err := field.Int64().Decode(recs[0].At(0))
	if err != nil {
		return 0, rowmap.NewStorageError("count", query, err)
	}
	return int(n.(int64)), nil
}

// LoadUnique returns the only entity matching proto, loaded again by
// primary key so that it carries a snapshot. It returns nil if nothing
// matched and an AmbiguousResultError if several rows did.
func (s *Session) LoadUnique(ctx context.Context, proto any, opts ...LoadOption) (any, error) {
	d, err := s.Descriptor(proto)
	if err != nil {
		return nil, err
	}
	list, err := s.LoadList(ctx, proto, append(opts[:len(opts):len(opts)], Limit(2))...)
	if err != nil {
		return nil, err
	}
	switch len(list) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, rowmap.NewAmbiguousResultError(d.Name(), len(list))
	}
	e := list[0]
	if !d.HasPK() {
		return e, nil
	}
	found, err := s.Load(ctx, e, opts...)
	if err != nil || !found {
		return nil, err
	}
	return e, nil
}

// List is LoadList for entities of type T.
func List[T any](ctx context.Context, s *Session, proto *T, opts ...LoadOption) ([]*T, error) {
	list, err := s.LoadList(ctx, proto, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(list))
	for i, e := range list {
		out[i] = e.(*T)
	}
	return out, nil
}

// Unique is LoadUnique for entities of type T.
func Unique[T any](ctx context.Context, s *Session, proto *T, opts ...LoadOption) (*T, error) {
	e, err := s.LoadUnique(ctx, proto, opts...)
	if e == nil || err != nil {
		return nil, err
	}
	return e.(*T), nil
}

// exists reports whether a row with the primary key of e is stored.
func (s *Session) exists(ctx context.Context, d *schema.Descriptor, e any) (bool, error) {
	b := s.builder()
	b.WriteString("SELECT ")
	for i, f := range d.PKs() {
		if i > 0 {
			b.Comma()
		}
		b.WriteString(f.Column)
	}
	b.WriteString(" FROM ").WriteString(d.Table())
	if err := wherePK(b, d, e); err != nil {
		return false, err
	}
	query, args := b.Query()
	recs, err := s.Query(ctx, "save", query, args)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}
