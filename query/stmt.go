package query

import (
	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
)

// Join kinds accepted by From.JoinAs.
const (
	InnerJoin = "JOIN"
	LeftJoin  = "LEFT JOIN"
	RightJoin = "RIGHT JOIN"
	FullJoin  = "FULL OUTER JOIN"
)

type pair struct{ l, r Param }

type join struct {
	kind string
	a    *Alias
	on   []pair
}

// nest stores the entity of target in prop of the entity of holder.
type nest struct {
	holder *Alias
	prop   string
	target *Alias
	force  bool
}

type ordering struct {
	p    Param
	desc bool
}

// stmt is the state shared by every stage of one statement.
type stmt struct {
	b        *Builder
	distinct bool
	items    []Selectable
	from     *Alias
	joins    []*join
	nests    []nest
	where    predicate
	groupBy  []Param
	having   predicate
	orders   []ordering
	limit    int
	offset   int
	errs     []error
}

func (st *stmt) sentences() []*SentenceExpr {
	var ss []*SentenceExpr
	for _, it := range st.items {
		if s, ok := it.(*SentenceExpr); ok {
			ss = append(ss, s)
		}
	}
	return ss
}

func (st *stmt) selects(a *Alias) bool {
	for _, it := range st.items {
		if it == Selectable(a) {
			return true
		}
	}
	return false
}

// render writes the statement into b, paginated with the session dialect.
func (st *stmt) render(b *sql.Builder) {
	body := b.Sub()
	st.renderBody(body)
	text := st.b.sess.Dialect().Paginate(body.String(), len(st.orders) > 0, st.limit, st.offset)
	b.Embed(text, body)
}

func (st *stmt) renderBody(b *sql.Builder) {
	for _, err := range st.errs {
		b.AddError(err)
	}
	b.WriteString("SELECT ")
	if st.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(st.items) == 0 {
		b.AddError(rowmap.NewMalformedQueryError("nothing selected"))
	}
	sql.Join(b, ",", st.items, func(b *sql.Builder, it Selectable) { it.renderSelect(b) })
	if st.from == nil {
		b.AddError(rowmap.NewMalformedQueryError("statement has no FROM"))
		return
	}
	b.WriteString(" FROM ")
	writeTable(b, st.from)
	for _, j := range st.joins {
		b.Pad().WriteString(j.kind).Pad()
		writeTable(b, j.a)
		if len(j.on) > 0 {
			b.WriteString(" ON ")
			sql.Join(b, " AND ", j.on, func(b *sql.Builder, p pair) {
				p.l.render(b)
				b.WriteString("=")
				p.r.render(b)
			})
		}
	}
	if err := st.where.err(); err != nil {
		b.AddError(err)
	} else if !st.where.empty() {
		b.WriteString(" WHERE ")
		st.where.render(b)
	}
	if len(st.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		sql.Join(b, ",", st.groupBy, func(b *sql.Builder, p Param) { p.render(b) })
	}
	if err := st.having.err(); err != nil {
		b.AddError(err)
	} else if !st.having.empty() {
		b.WriteString(" HAVING ")
		st.having.render(b)
	}
	if len(st.orders) > 0 {
		b.WriteString(" ORDER BY ")
		sql.Join(b, ",", st.orders, func(b *sql.Builder, o ordering) {
			o.p.render(b)
			if o.desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		})
	}
}

func writeTable(b *sql.Builder, a *Alias) {
	if a.err != nil {
		b.AddError(a.err)
		return
	}
	b.WriteString(a.desc.Table()).Pad().WriteString(a.name)
}

// Query is the part of a statement that can be rendered and run. Every
// stage from From on embeds it.
type Query struct{ st *stmt }

func (q Query) statement() *stmt { return q.st }

// SQL renders the statement for the dialect of the session driver.
// Structural mistakes are reported as a MalformedQueryError.
func (q Query) SQL() (string, []any, error) {
	b := sql.NewBuilder(q.st.b.sess.Driver().Dialect())
	q.st.render(b)
	if err := b.Err(); err != nil {
		return "", nil, err
	}
	query, args := b.Query()
	return query, args, nil
}

func (q Query) groupBy(ps []any) *GroupBy {
	q.st.groupBy = append(q.st.groupBy, params(ps)...)
	return &GroupBy{q}
}

// groupByAll groups by the projected columns of every selected alias.
func (q Query) groupByAll() *GroupBy {
	for _, it := range q.st.items {
		if a, ok := it.(*Alias); ok {
			q.st.groupBy = append(q.st.groupBy, a.Columns())
		}
	}
	return &GroupBy{q}
}

func (q Query) limitTo(n int) *Limit {
	q.st.limit = n
	return &Limit{q}
}

// Select is a statement before its FROM.
type Select struct{ st *stmt }

// Add appends items to the select list.
func (s *Select) Add(items ...Selectable) *Select {
	s.st.items = append(s.st.items, items...)
	return s
}

// From sets the main table. ExecuteQuery builds one entity of a per row.
func (s *Select) From(a *Alias) *From {
	s.st.from = a
	return &From{Query{s.st}}
}

// From is a statement with its main table, ready for joins.
type From struct{ Query }

// Join adds an inner join of a.
func (f *From) Join(a *Alias) *Join { return f.JoinAs(InnerJoin, a) }

// LeftJoin adds a left outer join of a.
func (f *From) LeftJoin(a *Alias) *Join { return f.JoinAs(LeftJoin, a) }

// RightJoin adds a right outer join of a.
func (f *From) RightJoin(a *Alias) *Join { return f.JoinAs(RightJoin, a) }

// JoinAs adds a join of the given kind, such as FullJoin.
func (f *From) JoinAs(kind string, a *Alias) *Join {
	j := &join{kind: kind, a: a}
	f.st.joins = append(f.st.joins, j)
	return &Join{st: f.st, j: j}
}

// Where starts the WHERE section.
func (f *From) Where() *Where { return &Where{f.st} }

// GroupBy groups by ps.
func (f *From) GroupBy(ps ...any) *GroupBy { return f.groupBy(ps) }

// GroupByAll groups by every selected alias column.
func (f *From) GroupByAll() *GroupBy { return f.groupByAll() }

// OrderBy starts the ORDER BY section.
func (f *From) OrderBy() *Order { return &Order{f.st} }

// Limit caps the number of rows through the dialect pagination. n <= 0
// leaves the statement unlimited.
func (f *From) Limit(n int) *Limit { return f.limitTo(n) }

// Join is a join waiting for its condition.
type Join struct {
	st *stmt
	j  *join
}

// On starts an equality between prop of a, the joined side, and a
// property of the other alias.
func (j *Join) On(a *Alias, prop string) *On {
	return &On{st: j.st, j: j.j, left: a.Field(prop)}
}

// PKOf joins on every primary key column of pk, matched by name in the
// alias given to In.
func (j *Join) PKOf(pk *Alias) *PKOf {
	return &PKOf{st: j.st, j: j.j, pk: pk}
}

// On is the left side of a join equality.
type On struct {
	st   *stmt
	j    *join
	left *Field
}

// Eq completes the equality with prop of a, the referencing side.
func (o *On) Eq(a *Alias, prop string) *Joined {
	o.j.on = append(o.j.on, pair{o.left, a.Field(prop)})
	return &Joined{From: &From{Query{o.st}}, j: o.j, pk: o.left.a, fk: a}
}

// PKOf is a primary key join waiting for the referencing alias.
type PKOf struct {
	st *stmt
	j  *join
	pk *Alias
}

// In renders "pk.col=fk.col" for each primary key column of pk. The
// referencing table must name its columns alike.
func (p *PKOf) In(fk *Alias) *Joined {
	if p.pk.desc != nil {
		for _, f := range p.pk.desc.PKs() {
			p.j.on = append(p.j.on, pair{p.pk.Field(f.Name), Native(fk.name + "." + f.Column)})
		}
		if !p.pk.desc.HasPK() {
			p.st.errs = append(p.st.errs, rowmap.NewMalformedQueryError("join on the primary key of %s, which has none", p.pk.desc.Name()))
		}
	}
	return &Joined{From: &From{Query{p.st}}, j: p.j, pk: p.pk, fk: fk}
}

// Joined is a join with its condition. It can nest the joined entities
// into each other when the statement runs.
type Joined struct {
	*From
	j      *join
	pk, fk *Alias
}

// And adds another equality to the join condition.
func (j *Joined) And(a *Alias, prop string) *On {
	return &On{st: j.st, j: j.j, left: a.Field(prop)}
}

// InProperty stores the primary key side entity in prop of the
// referencing entity, when prop is already non-nil.
func (j *Joined) InProperty(prop string) *Joined { return j.nest(j.fk, prop, j.pk, false) }

// InPropertyForcing is like InProperty but allocates prop when nil.
func (j *Joined) InPropertyForcing(prop string) *Joined { return j.nest(j.fk, prop, j.pk, true) }

// PKProperty stores the referencing entity in prop of the primary key
// side entity, when prop is already non-nil.
func (j *Joined) PKProperty(prop string) *Joined { return j.nest(j.pk, prop, j.fk, false) }

// PKPropertyForcing is like PKProperty but allocates prop when nil.
func (j *Joined) PKPropertyForcing(prop string) *Joined { return j.nest(j.pk, prop, j.fk, true) }

func (j *Joined) nest(holder *Alias, prop string, target *Alias, force bool) *Joined {
	j.st.nests = append(j.st.nests, nest{holder: holder, prop: prop, target: target, force: force})
	return j
}

// Where is the WHERE section waiting for a clause.
type Where struct{ st *stmt }

// Clause adds "left cond". left is a Param, a statement or a value.
func (w *Where) Clause(left any, c Condition) *Cond { return w.ClauseIf(true, left, c) }

// ClauseIf adds the clause only when ok, so optional filters chain
// without branching.
func (w *Where) ClauseIf(ok bool, left any, c Condition) *Cond {
	w.st.where.clause(ok, left, c)
	return &Cond{Query{w.st}}
}

// OpenPar opens a parenthesized group.
func (w *Where) OpenPar() *Where {
	w.st.where.add(tokOpen)
	return w
}

// Cond is the WHERE section after a clause.
type Cond struct{ Query }

// And joins the next clause with AND.
func (c *Cond) And() *Where {
	c.st.where.add(tokAnd)
	return &Where{c.st}
}

// Or joins the next clause with OR.
func (c *Cond) Or() *Where {
	c.st.where.add(tokOr)
	return &Where{c.st}
}

// ClosePar closes the innermost group.
func (c *Cond) ClosePar() *Cond {
	c.st.where.add(tokClose)
	return c
}

// GroupBy groups by ps.
func (c *Cond) GroupBy(ps ...any) *GroupBy { return c.groupBy(ps) }

// GroupByAll groups by every selected alias column.
func (c *Cond) GroupByAll() *GroupBy { return c.groupByAll() }

// OrderBy starts the ORDER BY section.
func (c *Cond) OrderBy() *Order { return &Order{c.st} }

// Limit caps the number of rows.
func (c *Cond) Limit(n int) *Limit { return c.limitTo(n) }

// GroupBy is a grouped statement.
type GroupBy struct{ Query }

// Add appends more grouping terms.
func (g *GroupBy) Add(ps ...any) *GroupBy { return g.groupBy(ps) }

// Having starts the HAVING section.
func (g *GroupBy) Having() *Having { return &Having{g.st} }

// OrderBy starts the ORDER BY section.
func (g *GroupBy) OrderBy() *Order { return &Order{g.st} }

// Limit caps the number of rows.
func (g *GroupBy) Limit(n int) *Limit { return g.limitTo(n) }

// Having is the HAVING section waiting for a clause.
type Having struct{ st *stmt }

// Clause adds "left cond".
func (h *Having) Clause(left any, c Condition) *HavingCond { return h.ClauseIf(true, left, c) }

// ClauseIf adds the clause only when ok.
func (h *Having) ClauseIf(ok bool, left any, c Condition) *HavingCond {
	h.st.having.clause(ok, left, c)
	return &HavingCond{Query{h.st}}
}

// OpenPar opens a parenthesized group.
func (h *Having) OpenPar() *Having {
	h.st.having.add(tokOpen)
	return h
}

// HavingCond is the HAVING section after a clause.
type HavingCond struct{ Query }

// And joins the next clause with AND.
func (c *HavingCond) And() *Having {
	c.st.having.add(tokAnd)
	return &Having{c.st}
}

// Or joins the next clause with OR.
func (c *HavingCond) Or() *Having {
	c.st.having.add(tokOr)
	return &Having{c.st}
}

// ClosePar closes the innermost group.
func (c *HavingCond) ClosePar() *HavingCond {
	c.st.having.add(tokClose)
	return c
}

// OrderBy starts the ORDER BY section.
func (c *HavingCond) OrderBy() *Order { return &Order{c.st} }

// Limit caps the number of rows.
func (c *HavingCond) Limit(n int) *Limit { return c.limitTo(n) }

// Order is the ORDER BY section waiting for a term.
type Order struct{ st *stmt }

// Asc orders by ps ascending.
func (o *Order) Asc(ps ...any) *Ordering { return (&Ordering{Query{o.st}}).Asc(ps...) }

// Desc orders by ps descending.
func (o *Order) Desc(ps ...any) *Ordering { return (&Ordering{Query{o.st}}).Desc(ps...) }

// Ordering is an ordered statement.
type Ordering struct{ Query }

// Asc appends ascending terms.
func (o *Ordering) Asc(ps ...any) *Ordering { return o.order(ps, false) }

// Desc appends descending terms.
func (o *Ordering) Desc(ps ...any) *Ordering { return o.order(ps, true) }

func (o *Ordering) order(ps []any, desc bool) *Ordering {
	for _, p := range params(ps) {
		o.st.orders = append(o.st.orders, ordering{p: p, desc: desc})
	}
	return o
}

// Limit caps the number of rows.
func (o *Ordering) Limit(n int) *Limit { return o.limitTo(n) }

// Limit is a statement with a row cap.
type Limit struct{ Query }

// Offset skips the first n rows through the dialect pagination, with or
// without a row cap. n <= 0 leaves it out.
func (l *Limit) Offset(n int) *Offset {
	l.st.offset = n
	return &Offset{l.Query}
}

// Offset is a statement with a row cap and offset.
type Offset struct{ Query }
