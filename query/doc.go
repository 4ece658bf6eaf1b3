// Package query builds SELECT statements over registered entities and
// maps their rows back into entity graphs.
//
// Statements are written in stages, so that only the calls valid at each
// point are offered:
//
//	qb := query.New(sess)
//	p, c := qb.Alias(&Post{}, "p"), qb.Alias(&Company{}, "c")
//	posts, err := query.Execute[Post](ctx, qb.
//	    Select(p, c).From(p).
//	    LeftJoin(c).On(c, "ID").Eq(p, "Company.ID").InProperty("Company").
//	    Where().
//	    ClauseIf(title != "", p.Field("Title"), query.Like(title)).And().
//	    Clause(p.Field("Views"), query.Gt(10)).
//	    OrderBy().Desc(p.Field("Views")).
//	    Limit(20))
//
// Clauses added with ClauseIf(false, ...) are dropped together with the
// connective written after them, as are groups left empty, so optional
// filters need no branching. Unbalanced parentheses, empty IN lists and
// unnamed sentences are reported as a MalformedQueryError when the
// statement renders.
package query
