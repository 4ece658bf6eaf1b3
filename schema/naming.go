package schema

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
)

// TableName returns the default table name of a type: its name in
// snake_case, pluralized. "User" becomes "users", "OrderItem" becomes
// "order_items".
func TableName(typeName string) string {
	return inflect.Pluralize(snake(typeName))
}

// ColumnName returns the default column name of a property path: each
// segment in snake_case, joined by "_". "Address.ZipCode" becomes
// "address_zip_code" and "UserID" becomes "user_id".
func ColumnName(path string) string {
	segs := strings.Split(path, ".")
	for i, s := range segs {
		segs[i] = snake(s)
	}
	return strings.Join(segs, "_")
}

func snake(s string) string {
	return inflect.Underscore(collapseAcronyms(s))
}

// collapseAcronyms lowers the tail of upper-case runs so that acronyms
// form a single word: "UserID" -> "UserId", "HTTPServer" -> "HttpServer".
func collapseAcronyms(s string) string {
	rs := []rune(s)
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = r
		if i == 0 || !unicode.IsUpper(r) || !unicode.IsUpper(rs[i-1]) {
			continue
		}
		// Keep the last upper-case rune of a run when a lower-case one
		// follows: it starts the next word.
		if i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
			continue
		}
		out[i] = unicode.ToLower(r)
	}
	return string(out)
}

// sameName reports whether two property names collide.
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}
