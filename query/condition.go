package query

import (
	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
)

// Condition is the right-hand side of a clause. A condition may render
// nothing, in which case its clause is dropped.
type Condition interface {
	empty() bool
	render(b *sql.Builder)
}

type compare struct {
	op string
	p  Param
}

func (c compare) empty() bool { return false }

func (c compare) render(b *sql.Builder) {
	b.WriteString(c.op).Pad()
	c.p.render(b)
}

func cmp(op string, v any) Condition { return compare{op: op, p: toParam(v)} }

type isNull bool

func (isNull) empty() bool { return false }

func (c isNull) render(b *sql.Builder) {
	if c {
		b.WriteString("IS NOT NULL")
		return
	}
	b.WriteString("IS NULL")
}

// Eq is "= v", or IS NULL for a nil v.
func Eq(v any) Condition {
	if v == nil {
		return isNull(false)
	}
	return cmp("=", v)
}

// Ne is "<> v", or IS NOT NULL for a nil v.
func Ne(v any) Condition {
	if v == nil {
		return isNull(true)
	}
	return cmp("<>", v)
}

// IsNull is IS NULL.
func IsNull() Condition { return isNull(false) }

// NotNull is IS NOT NULL.
func NotNull() Condition { return isNull(true) }

// Lt is "< v".
func Lt(v any) Condition { return cmp("<", v) }

// Le is "<= v".
func Le(v any) Condition { return cmp("<=", v) }

// Gt is "> v".
func Gt(v any) Condition { return cmp(">", v) }

// Ge is ">= v".
func Ge(v any) Condition { return cmp(">=", v) }

// Like is "LIKE pattern".
func Like(pattern any) Condition { return cmp("LIKE", pattern) }

// NotLike is "NOT LIKE pattern".
func NotLike(pattern any) Condition { return cmp("NOT LIKE", pattern) }

type between struct {
	lo, hi Param
	not    bool
}

func (c between) empty() bool { return false }

func (c between) render(b *sql.Builder) {
	if c.not {
		b.WriteString("NOT ")
	}
	b.WriteString("BETWEEN ")
	c.lo.render(b)
	b.WriteString(" AND ")
	c.hi.render(b)
}

type none struct{}

func (none) empty() bool           { return true }
func (none) render(b *sql.Builder) {}

// Between is "BETWEEN lo AND hi". A nil bound leaves the range open on
// that side: Between(nil, hi) is "<= hi" and Between(lo, nil) is ">= lo".
// With both bounds nil the clause is dropped.
func Between(lo, hi any) Condition {
	switch {
	case lo == nil && hi == nil:
		return none{}
	case lo == nil:
		return Le(hi)
	case hi == nil:
		return Ge(lo)
	}
	return between{lo: toParam(lo), hi: toParam(hi)}
}

// NotBetween is "NOT BETWEEN lo AND hi", degrading like Between to "> hi"
// or "< lo".
func NotBetween(lo, hi any) Condition {
	switch {
	case lo == nil && hi == nil:
		return none{}
	case lo == nil:
		return Gt(hi)
	case hi == nil:
		return Lt(lo)
	}
	return between{lo: toParam(lo), hi: toParam(hi), not: true}
}

type in struct {
	ps  []Param
	not bool
}

func (c in) empty() bool { return false }

func (c in) render(b *sql.Builder) {
	if c.not {
		b.WriteString("NOT ")
	}
	b.WriteString("IN ")
	if len(c.ps) == 0 {
		b.AddError(rowmap.NewMalformedQueryError("IN needs at least one value"))
		return
	}
	if len(c.ps) == 1 {
		if sub, ok := c.ps[0].(subquery); ok {
			sub.render(b)
			return
		}
	}
	b.WriteString("(")
	sql.Join(b, ",", c.ps, func(b *sql.Builder, p Param) { p.render(b) })
	b.WriteString(")")
}

// In is "IN (vs...)". A single statement argument renders "IN (SELECT ...)".
func In(vs ...any) Condition { return in{ps: params(vs)} }

// NotIn is "NOT IN (vs...)".
func NotIn(vs ...any) Condition { return in{ps: params(vs), not: true} }

type raw string

func (raw) empty() bool             { return false }
func (c raw) render(b *sql.Builder) { b.WriteString(string(c)) }

// Raw is a condition written as is, such as "IS TRUE".
func Raw(sql string) Condition { return raw(sql) }
