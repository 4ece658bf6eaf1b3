package query

import (
	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect/sql"
)

type tokenKind uint8

const (
	tokClause tokenKind = iota
	tokAnd
	tokOr
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	left Param
	cond Condition
	skip bool
}

// predicate collects the clauses, connectives and parentheses of a WHERE
// or HAVING section in call order.
type predicate struct {
	toks  []token
	depth int
	errs  []error
}

func (p *predicate) clause(ok bool, left any, c Condition) {
	p.toks = append(p.toks, token{kind: tokClause, left: toParam(left), cond: c, skip: !ok})
}

func (p *predicate) add(k tokenKind) {
	switch k {
	case tokOpen:
		p.depth++
	case tokClose:
		if p.depth == 0 {
			p.errs = append(p.errs, rowmap.NewMalformedQueryError("closing parenthesis without a matching open"))
			return
		}
		p.depth--
	}
	p.toks = append(p.toks, token{kind: k})
}

func (p *predicate) err() error {
	if len(p.errs) > 0 {
		return p.errs[0]
	}
	if p.depth != 0 {
		return rowmap.NewMalformedQueryError("%d parenthesis left open", p.depth)
	}
	return nil
}

// node is a clause or a parenthesized group. conn is the connective
// written right after it.
type node struct {
	tok   *token
	group []*node
	conn  string
}

func (n *node) empty() bool {
	if n.tok != nil {
		return n.tok.skip || n.tok.cond.empty()
	}
	for _, c := range n.group {
		if !c.empty() {
			return false
		}
	}
	return true
}

func (p *predicate) tree() []*node {
	nodes, _ := parse(p.toks, 0)
	return nodes
}

func parse(toks []token, i int) ([]*node, int) {
	var nodes []*node
	for ; i < len(toks); i++ {
		t := &toks[i]
		switch t.kind {
		case tokClause:
			nodes = append(nodes, &node{tok: t})
		case tokOpen:
			group, next := parse(toks, i+1)
			nodes = append(nodes, &node{group: group})
			i = next
		case tokClose:
			return nodes, i
		case tokAnd, tokOr:
			if len(nodes) > 0 {
				nodes[len(nodes)-1].conn = connective(t.kind)
			}
		}
	}
	return nodes, i
}

func connective(k tokenKind) string {
	if k == tokOr {
		return "OR"
	}
	return "AND"
}

// empty reports whether the predicate renders nothing.
func (p *predicate) empty() bool {
	return (&node{group: p.tree()}).empty()
}

// render writes the emitted clauses. A skipped clause or an empty group
// takes the connective written after it along, so the connective after
// an emitted fragment joins it to the next emitted one.
func (p *predicate) render(b *sql.Builder) {
	renderGroup(b, p.tree())
}

func renderGroup(b *sql.Builder, nodes []*node) {
	var prev *node
	for _, n := range nodes {
		if n.empty() {
			continue
		}
		if prev != nil {
			conn := prev.conn
			if conn == "" {
				conn = "AND"
			}
			b.Pad().WriteString(conn).Pad()
		}
		if n.tok != nil {
			n.tok.left.render(b)
			b.Pad()
			n.tok.cond.render(b)
		} else {
			b.WriteString("(")
			renderGroup(b, n.group)
			b.WriteString(")")
		}
		prev = n
	}
}
