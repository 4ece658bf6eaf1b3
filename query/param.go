package query

import (
	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
)

// Param is an operand of a statement: a bound value, a column, a function,
// an arithmetic operation, a sentence or a sub-query.
type Param interface {
	render(b *sql.Builder)
}

type value struct{ v any }

func (p value) render(b *sql.Builder) { b.Arg(p.v) }

// Value binds v as a statement argument. A nil v binds NULL.
func Value(v any) Param { return value{v} }

type native string

func (p native) render(b *sql.Builder) { b.WriteString(string(p)) }

// Native is raw SQL written as is.
func Native(sql string) Param { return native(sql) }

// Field is a property of an alias, rendered as "alias.column".
type Field struct {
	a    *Alias
	prop string
}

func (f *Field) render(b *sql.Builder) {
	if f.a.err != nil {
		b.AddError(f.a.err)
		return
	}
	b.WriteString(f.a.Column(f.prop))
}

// Prop returns the property name of f.
func (f *Field) Prop() string { return f.prop }

type columns struct {
	a     *Alias
	props []string
}

func (p columns) render(b *sql.Builder) {
	if p.a.err != nil {
		b.AddError(p.a.err)
		return
	}
	props := p.props
	if len(props) == 0 {
		for _, f := range p.a.fields() {
			props = append(props, f.Name)
		}
	}
	sql.Join(b, ",", props, func(b *sql.Builder, prop string) {
		b.WriteString(p.a.Column(prop))
	})
}

type function struct {
	name string
	args []Param
}

func (p function) render(b *sql.Builder) {
	b.WriteString(p.name).WriteString("(")
	sql.Join(b, ",", p.args, func(b *sql.Builder, a Param) { a.render(b) })
	b.WriteString(")")
}

// Func calls the SQL function name with args. Arguments that are not a
// Param or a statement are bound as values.
func Func(name string, args ...any) Param {
	return function{name: name, args: params(args)}
}

// Count renders COUNT(p).
func Count(p any) Param { return Func("COUNT", p) }

// Sum renders SUM(p).
func Sum(p any) Param { return Func("SUM", p) }

// Avg renders AVG(p).
func Avg(p any) Param { return Func("AVG", p) }

// Min renders MIN(p).
func Min(p any) Param { return Func("MIN", p) }

// Max renders MAX(p).
func Max(p any) Param { return Func("MAX", p) }

// Length renders LENGTH(p).
func Length(p any) Param { return Func("LENGTH", p) }

// Upper renders UPPER(p).
func Upper(p any) Param { return Func("UPPER", p) }

// Lower renders LOWER(p).
func Lower(p any) Param { return Func("LOWER", p) }

// Coalesce renders COALESCE(ps...).
func Coalesce(ps ...any) Param { return Func("COALESCE", ps...) }

// NullIf renders NULLIF(a,b).
func NullIf(a, b any) Param { return Func("NULLIF", a, b) }

// Substring renders SUBSTRING(str,begin,length). A nil begin starts at the
// first character and a nil length runs to LENGTH(str).
func Substring(str, begin, length any) Param {
	p := toParam(str)
	if begin == nil {
		begin = Native("1")
	}
	if length == nil {
		length = Length(p)
	}
	return function{name: "SUBSTRING", args: []Param{p, toParam(begin), toParam(length)}}
}

type operation struct {
	sign string
	args []Param
}

func (p operation) render(b *sql.Builder) {
	if len(p.args) < 2 {
		b.AddError(rowmap.NewMalformedQueryError("operation %q takes at least 2 operands, got %d", p.sign, len(p.args)))
		return
	}
	b.WriteString("(")
	sql.Join(b, " "+p.sign+" ", p.args, func(b *sql.Builder, a Param) { a.render(b) })
	b.WriteString(")")
}

// Operation joins args with the arithmetic operator sign: "(a + b + c)".
// It needs at least two operands.
func Operation(sign string, args ...any) Param {
	return operation{sign: sign, args: params(args)}
}

// Plus renders (a + b).
func Plus(a, b any) Param { return Operation("+", a, b) }

// Minus renders (a - b).
func Minus(a, b any) Param { return Operation("-", a, b) }

// Times renders (a * b).
func Times(a, b any) Param { return Operation("*", a, b) }

// Divide renders (a / b).
func Divide(a, b any) Param { return Operation("/", a, b) }

type subquery struct{ st *stmt }

func (p subquery) render(b *sql.Builder) {
	b.WriteString("(")
	p.st.render(b)
	b.WriteString(")")
}

// Statement is any stage of a statement that can be rendered.
type Statement interface {
	SQL() (string, []any, error)
	statement() *stmt
}

// Sub nests q, rendered in parentheses. Its arguments are numbered in
// line with the enclosing statement.
func Sub(q Statement) Param { return subquery{q.statement()} }

func toParam(v any) Param {
	switch v := v.(type) {
	case Param:
		return v
	case Statement:
		return Sub(v)
	}
	return Value(v)
}

func params(vs []any) []Param {
	ps := make([]Param, len(vs))
	for i, v := range vs {
		ps[i] = toParam(v)
	}
	return ps
}
