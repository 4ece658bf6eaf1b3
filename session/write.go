package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/trigger"
)

var errNotInserted = errors.New("session: no row inserted")

// column is one assignment of an INSERT or UPDATE: a bound value, or a
// dialect token such as now().
type column struct {
	f     *schema.Field
	token string
	value any
}

func writeValue(b *sql.Builder, c column) {
	if c.token != "" {
		b.WriteString(c.token)
		return
	}
	b.Arg(c.value)
}

// boundFields returns the fields written with a bound value.
func boundFields(cols []column) []*schema.Field {
	fields := make([]*schema.Field, 0, len(cols))
	for _, c := range cols {
		if c.token == "" {
			fields = append(fields, c.f)
		}
	}
	return fields
}

// nowColumn returns the column of a timestamp set to the current time: the
// dialect token, or the client time written into e and bound.
func (s *Session) nowColumn(d *schema.Descriptor, f *schema.Field, e any, now time.Time) (column, error) {
	if tok := s.dialect.NowToken(); tok != "" {
		return column{f: f, token: tok}, nil
	}
	if err := beans.Set(e, f.Name, now, d.AbstractType); err != nil {
		return column{}, err
	}
	v, err := bind(d, f, now)
	return column{f: f, value: v}, err
}

// Insert writes e as a new row, reads the generated key back into e and
// records its snapshot.
func (s *Session) Insert(ctx context.Context, e any) error {
	d, err := s.Descriptor(e)
	if err != nil {
		return err
	}
	s.dispatch(ctx, d, trigger.BeforeInsert, e)
	key, ks, err := s.keyStrategy(d)
	if err != nil {
		return err
	}
	if ks.Timing == KeyBefore {
		if err := s.readKey(ctx, d, key, e, ks.Query); err != nil {
			return err
		}
	}
	cols, err := s.insertColumns(d, e)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return rowmap.NewEmptyEntityError(d.Name(), "insert")
	}
	b := s.builder()
	b.WriteString("INSERT INTO ").WriteString(d.Table()).WriteString("(")
	sql.Join(b, ",", cols, func(b *sql.Builder, c column) { b.WriteString(c.f.Column) })
	b.WriteString(") VALUES(")
	sql.Join(b, ",", cols, writeValue)
	b.WriteString(")")
	query, args := b.Query()

	if ks.Timing == KeyReturning {
		query += " RETURNING " + key.Column
		recs, err := s.Query(ctx, "insert", query, args)
		if err != nil {
			return err
		}
		if len(recs) != 1 {
			return rowmap.NewStorageError("insert", query, errNotInserted)
		}
		if err := s.setKey(ctx, d, key, e, recs[0].At(0)); err != nil {
			return err
		}
	} else {
		res, err := s.exec(ctx, "insert", query, args)
		if err != nil {
			return err
		}
		n, err := sql.RowsAffected(res)
		switch {
		case err != nil:
			return rowmap.NewStorageError("insert", query, err)
		case n == 0:
			return rowmap.NewStorageError("insert", query, errNotInserted)
		case n > 1:
			return rowmap.NewUnexpectedMultiRowEffectError(d.Name(), "insert", n)
		}
		switch ks.Timing {
		case KeyLastInsertID:
			id, err := res.LastInsertId()
			if err != nil {
				return rowmap.NewStorageError("insert", query, err)
			}
			if err := s.setKey(ctx, d, key, e, id); err != nil {
				return err
			}
		case KeyAfter:
			if err := s.readKey(ctx, d, key, e, ks.Query); err != nil {
				return err
			}
		}
	}

	fields := boundFields(cols)
	if key != nil && ks.Timing != KeyBefore {
		fields = append(fields, key)
	}
	s.record(ctx, d, e, fields)
	s.dispatch(ctx, d, trigger.AfterInsert, e)
	return nil
}

// insertColumns returns the keys, then the other fields, that an INSERT
// of e writes.
func (s *Session) insertColumns(d *schema.Descriptor, e any) ([]column, error) {
	now := s.now()
	var cols []column
	add := func(f *schema.Field) error {
		if f.Gen.OnInsert() {
			c, err := s.nowColumn(d, f, e, now)
			if err != nil {
				return err
			}
			cols = append(cols, c)
			return nil
		}
		v, err := bind(d, f, beans.Value(e, f.Name))
		if err != nil {
			return err
		}
		cols = append(cols, column{f: f, value: v})
		return nil
	}
	for _, f := range d.PKs() {
		if f.Gen.Kind == schema.GenAutoIncrement {
			continue
		}
		if err := add(f); err != nil {
			return nil, err
		}
	}
	for _, f := range d.Fields() {
		if f.PK {
			continue
		}
		switch f.Gen.Kind {
		case schema.GenAutoIncrement, schema.GenAutoTimestamp, schema.GenNowOnUpdate:
			continue
		}
		if err := add(f); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// keyStrategy returns the generated key of d, if any, and how the dialect
// retrieves it.
func (s *Session) keyStrategy(d *schema.Descriptor) (*schema.Field, KeyStrategy, error) {
	key := d.SequenceField()
	if key == nil {
		key = d.AutoIncrementField()
	}
	if key == nil {
		return nil, KeyStrategy{}, nil
	}
	ks := s.dialect.KeyStrategy(d, key)
	if ks.Timing == KeyUnsupported {
		return nil, ks, rowmap.NewSchemaConfigError(d.Name(), "%s dialect does not support %s key %q", s.dialect.Name(), key.Gen.Kind, key.Name)
	}
	return key, ks, nil
}

// readKey runs query and writes its single value into the key of e.
func (s *Session) readKey(ctx context.Context, d *schema.Descriptor, key *schema.Field, e any, query string) error {
	recs, err := s.Query(ctx, "insert", query, []any{})
	if err != nil {
		return err
	}
	if len(recs) != 1 || recs[0].Len() == 0 {
		return rowmap.NewStorageError("insert", query, fmt.Errorf("session: %s key query returned %d rows", d.Name(), len(recs)))
	}
	return s.setKey(ctx, d, key, e, recs[0].At(0))
}

func (s *Session) setKey(ctx context.Context, d *schema.Descriptor, key *schema.Field, e any, raw any) error {
	v, err := key.Type.Decode(raw)
	if err != nil {
		return fmt.Errorf("session: decode %s.%s: %w", d.Name(), key.Name, err)
	}
	if err := beans.Set(e, key.Name, v, d.AbstractType); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "generated key retrieved", "entity", d.Name(), "field", key.Name, "value", v)
	return nil
}

// Update writes the changed properties of e by primary key. For an entity
// loaded or inserted by this session, changed means different from the
// snapshot. Otherwise every set property is written, and the properties
// named in forceNull that are not set are written as NULL.
//
// It returns 1 if a row was updated and 0 if no row matched or nothing
// had to be written.
func (s *Session) Update(ctx context.Context, e any, forceNull ...string) (int, error) {
	return s.update(ctx, e, true, forceNull)
}

// UpdateAll writes every property of e by primary key, set or not.
func (s *Session) UpdateAll(ctx context.Context, e any) (int, error) {
	return s.update(ctx, e, false, nil)
}

func (s *Session) update(ctx context.Context, e any, dynamic bool, forceNull []string) (int, error) {
	d, err := s.Descriptor(e)
	if err != nil {
		return 0, err
	}
	s.dispatch(ctx, d, trigger.BeforeUpdate, e)
	cols, err := s.updateColumns(d, e, dynamic, forceNull)
	if err != nil || len(cols) == 0 {
		return 0, err
	}
	if err := checkPK(d, e); err != nil {
		return 0, err
	}
	b := s.builder()
	b.WriteString("UPDATE ").WriteString(d.Table()).WriteString(" SET ")
	sql.Join(b, ",", cols, func(b *sql.Builder, c column) {
		b.WriteString(c.f.Column).WriteString("=")
		writeValue(b, c)
	})
	if err := wherePK(b, d, e); err != nil {
		return 0, err
	}
	query, args := b.Query()
	n, err := s.execCount(ctx, "update", query, args)
	switch {
	case err != nil:
		return 0, err
	case n > 1:
		return 0, rowmap.NewUnexpectedMultiRowEffectError(d.Name(), "update", n)
	case n == 0:
		return 0, nil
	}
	s.patch(ctx, d, e, boundFields(cols))
	s.dispatch(ctx, d, trigger.AfterUpdate, e)
	return 1, nil
}

func (s *Session) updateColumns(d *schema.Descriptor, e any, dynamic bool, forceNull []string) ([]column, error) {
	snap, attached := s.snaps[e]
	now := s.now()
	var cols []column
	for _, f := range d.Fields() {
		if f.PK {
			continue
		}
		switch f.Gen.Kind {
		case schema.GenAutoIncrement, schema.GenSequence, schema.GenAutoTimestamp:
			continue
		}
		if f.Gen.OnUpdate() {
			c, err := s.nowColumn(d, f, e, now)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
			continue
		}
		cur := beans.Value(e, f.Name)
		switch {
		case !dynamic:
		case attached:
			old, ok := snap[f.Name]
			if !ok || beans.Equal(old, cur) {
				continue
			}
		case beans.IsSet(e, f.Name):
		case containsFold(forceNull, f.Name):
			cur = nil
		default:
			continue
		}
		v, err := bind(d, f, cur)
		if err != nil {
			return nil, err
		}
		cols = append(cols, column{f: f, value: v})
	}
	return cols, nil
}

// Delete removes the row of e by primary key and discards its snapshot.
// It reports false if no row matched.
func (s *Session) Delete(ctx context.Context, e any) (bool, error) {
	d, err := s.Descriptor(e)
	if err != nil {
		return false, err
	}
	if err := checkPK(d, e); err != nil {
		return false, err
	}
	s.dispatch(ctx, d, trigger.BeforeDelete, e)
	b := s.builder()
	b.WriteString("DELETE FROM ").WriteString(d.Table())
	if err := wherePK(b, d, e); err != nil {
		return false, err
	}
	query, args := b.Query()
	n, err := s.execCount(ctx, "delete", query, args)
	switch {
	case err != nil:
		return false, err
	case n > 1:
		return false, rowmap.NewUnexpectedMultiRowEffectError(d.Name(), "delete", n)
	case n == 0:
		return false, nil
	}
	s.discard(ctx, d, e)
	s.dispatch(ctx, d, trigger.AfterDelete, e)
	return true, nil
}

// DeleteAll removes the rows matching every set property of proto and
// returns their number. A prototype with nothing set removes every row.
func (s *Session) DeleteAll(ctx context.Context, proto any) (int, error) {
	d, err := s.Descriptor(proto)
	if err != nil {
		return 0, err
	}
	b := s.builder()
	b.WriteString("DELETE FROM ").WriteString(d.Table())
	if err := whereSet(b, d, proto); err != nil {
		return 0, err
	}
	query, args := b.Query()
	n, err := s.execCount(ctx, "delete", query, args)
	return int(n), err
}

// SaveResult tells what Save did.
type SaveResult int

// Save results.
const (
	Updated SaveResult = iota
	Inserted
)

func (r SaveResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case Inserted:
		return "inserted"
	}
	return fmt.Sprintf("SaveResult(%d)", int(r))
}

// Save updates e if a row with its primary key exists and inserts it
// otherwise. An entity without a primary key value is inserted directly.
func (s *Session) Save(ctx context.Context, e any, forceNull ...string) (SaveResult, error) {
	return s.save(ctx, e, func() error {
		_, err := s.Update(ctx, e, forceNull...)
		return err
	})
}

// SaveAll is Save with a full update: every property of an existing row
// is written, set or not.
func (s *Session) SaveAll(ctx context.Context, e any) (SaveResult, error) {
	return s.save(ctx, e, func() error {
		_, err := s.UpdateAll(ctx, e)
		return err
	})
}

func (s *Session) save(ctx context.Context, e any, update func() error) (SaveResult, error) {
	d, err := s.Descriptor(e)
	if err != nil {
		return 0, err
	}
	if checkPK(d, e) == nil {
		found, err := s.exists(ctx, d, e)
		if err != nil {
			return 0, err
		}
		if found {
			return Updated, update()
		}
	}
	return Inserted, s.Insert(ctx, e)
}

// CompareDifferences returns a new entity holding the primary keys of
// newE and the properties of newE that differ from oldE and are set.
// Properties set in oldE but not in newE are returned in nullProps. diff
// is nil when nothing differs.
func (s *Session) CompareDifferences(newE, oldE any) (diff any, nullProps []string, err error) {
	d, err := s.Descriptor(newE)
	if err != nil {
		return nil, nil, err
	}
	if od, err := s.Descriptor(oldE); err != nil {
		return nil, nil, err
	} else if od != d {
		return nil, nil, rowmap.NewSchemaConfigError(d.Name(), "cannot compare with %s", od.Name())
	}
	out := d.New()
	for _, f := range d.PKs() {
		if err := beans.Set(out, f.Name, beans.Value(newE, f.Name), d.AbstractType); err != nil {
			return nil, nil, err
		}
	}
	differs := false
	for _, f := range d.Fields() {
		if f.PK {
			continue
		}
		newSet, oldSet := beans.IsSet(newE, f.Name), beans.IsSet(oldE, f.Name)
		switch {
		case !newSet && !oldSet:
			continue
		case !newSet:
			nullProps = append(nullProps, f.Name)
			differs = true
			continue
		}
		v := beans.Value(newE, f.Name)
		if oldSet && beans.Equal(v, beans.Value(oldE, f.Name)) {
			continue
		}
		if err := beans.Set(out, f.Name, v, d.AbstractType); err != nil {
			return nil, nil, err
		}
		differs = true
	}
	if !differs {
		return nil, nil, nil
	}
	return out, nullProps, nil
}

// UpdateDiff updates the row of newE with what differs from oldE, setting
// to NULL the properties that newE dropped.
func (s *Session) UpdateDiff(ctx context.Context, newE, oldE any) (int, error) {
	diff, nullProps, err := s.CompareDifferences(newE, oldE)
	if err != nil || diff == nil {
		return 0, err
	}
	return s.Update(ctx, diff, nullProps...)
}
