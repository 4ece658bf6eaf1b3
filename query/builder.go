package query

import (
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/session"
)

// Builder starts statements over the entities registered with a session.
type Builder struct {
	sess *session.Session
}

// New returns a builder running its statements on s.
func New(s *session.Session) *Builder {
	return &Builder{sess: s}
}

// Session returns the session of the builder.
func (b *Builder) Session() *session.Session { return b.sess }

// Alias names an entity inside a statement. e is a pointer to the entity,
// the entity or its reflect.Type. An empty name defaults to the lower-case
// entity name. A lookup failure is reported when the statement renders.
func (b *Builder) Alias(e any, name string) *Alias {
	a := &Alias{name: name}
	a.desc, a.err = b.sess.Registry().DescriptorOf(e)
	if a.err == nil && name == "" {
		a.name = strings.ToLower(a.desc.Name())
	}
	return a
}

// Select starts a statement selecting items, each an *Alias or a
// *SentenceExpr.
func (b *Builder) Select(items ...Selectable) *Select {
	return &Select{st: b.newStmt(false, items)}
}

// SelectDistinct is like Select with SELECT DISTINCT.
func (b *Builder) SelectDistinct(items ...Selectable) *Select {
	return &Select{st: b.newStmt(true, items)}
}

// SelectFrom selects every column of a from its table.
func (b *Builder) SelectFrom(a *Alias) *From {
	return b.Select(a).From(a)
}

func (b *Builder) newStmt(distinct bool, items []Selectable) *stmt {
	return &stmt{b: b, distinct: distinct, items: items, limit: -1}
}

// Selectable is an item of a select list: an *Alias or a *SentenceExpr.
type Selectable interface {
	renderSelect(b *sql.Builder)
}

// Alias is an entity under a name. Its projection selects the columns the
// statement reads back; primary keys are always selected.
type Alias struct {
	name string
	desc *schema.Descriptor
	proj session.Projection
	err  error
}

// Name returns the alias name.
func (a *Alias) Name() string { return a.name }

// Descriptor returns the descriptor of the aliased entity, nil if the
// lookup failed.
func (a *Alias) Descriptor() *schema.Descriptor { return a.desc }

// Include selects only props besides the primary keys.
func (a *Alias) Include(props ...string) *Alias {
	a.proj.Include = append(a.proj.Include, props...)
	return a
}

// Exclude leaves props out of the select list.
func (a *Alias) Exclude(props ...string) *Alias {
	a.proj.Exclude = append(a.proj.Exclude, props...)
	return a
}

// Field refers to the column of prop under the alias.
func (a *Alias) Field(prop string) *Field {
	return &Field{a: a, prop: prop}
}

// Column returns "alias.column" for prop.
func (a *Alias) Column(prop string) string {
	if a.desc == nil {
		return a.name + "." + prop
	}
	return a.name + "." + session.PropertyToColumn(a.desc, prop)
}

// Columns lists the columns of props, or of the projection when props is
// empty, unlabeled: "u.id,u.username".
func (a *Alias) Columns(props ...string) Param {
	return columns{a: a, props: props}
}

func (a *Alias) fields() []*schema.Field {
	if a.desc == nil {
		return nil
	}
	return a.proj.Fields(a.desc)
}

func (a *Alias) renderSelect(b *sql.Builder) {
	if a.err != nil {
		b.AddError(a.err)
		return
	}
	b.WriteString(session.BuildSelect(a.desc, a.name, a.proj))
}

// SentenceExpr is a computed column of a select list, rendered as
// "(expr) name". It is also a Param.
type SentenceExpr struct {
	p    Param
	name string
	prop string
	typ  field.Type
}

func (s *SentenceExpr) render(b *sql.Builder) {
	if _, ok := s.p.(subquery); ok {
		s.p.render(b)
		return
	}
	b.WriteString("(")
	s.p.render(b)
	b.WriteString(")")
}

// Sentence wraps p, a Param or a statement, as a computed column.
func Sentence(p any) *SentenceExpr {
	return &SentenceExpr{p: toParam(p), typ: field.Generic()}
}

// As names the result column.
func (s *SentenceExpr) As(name string) *SentenceExpr {
	s.name = name
	return s
}

// Into stores the value of each row in prop of the entity of the FROM
// alias. Without a name, the column is named after prop.
func (s *SentenceExpr) Into(prop string) *SentenceExpr {
	s.prop = prop
	if s.name == "" {
		s.name = strings.ReplaceAll(prop, ".", "_")
	}
	return s
}

// Returns sets the codec decoding the column, field.Generic by default.
func (s *SentenceExpr) Returns(t field.Type) *SentenceExpr {
	s.typ = t
	return s
}

// Name returns the result column name.
func (s *SentenceExpr) Name() string { return s.name }

func (s *SentenceExpr) renderSelect(b *sql.Builder) {
	if s.name == "" {
		b.AddError(rowmap.NewMalformedQueryError("a selected sentence needs a name"))
		return
	}
	s.render(b)
	b.Pad().WriteString(s.name)
}

func (s *SentenceExpr) decode(rec sql.Record) (any, error) {
	raw, ok := rec.Get(s.name)
	if !ok {
		return nil, rowmap.NewMalformedQueryError("sentence %q missing from result", s.name)
	}
	if raw == nil {
		return nil, nil
	}
	return s.typ.Decode(raw)
}
