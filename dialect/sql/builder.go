package sql

import (
	"errors"
	"strconv"
	"strings"

	"github.com/syssam/rowmap/dialect"
)

// Builder accumulates statement text together with its positional
// arguments. Placeholders follow the dialect: "$n" for PostgreSQL and
// "?" otherwise. Errors are collected and reported by Query.
type Builder struct {
	sb      strings.Builder
	args    []any
	errs    []error
	dialect string
	base    int // placeholders already used by enclosing builders
}

// NewBuilder returns an empty Builder for the given dialect.
func NewBuilder(dialect string) *Builder {
	return &Builder{dialect: baseDialect(dialect)}
}

// Dialect returns the builder dialect.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends s to the statement text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Pad appends a single space.
func (b *Builder) Pad() *Builder {
	return b.WriteString(" ")
}

// Comma appends a comma.
func (b *Builder) Comma() *Builder {
	return b.WriteString(",")
}

// Arg appends a placeholder and records a as its argument.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(b.base + len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Args appends comma separated placeholders for as.
func (b *Builder) Args(as ...any) *Builder {
	for i, a := range as {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a)
	}
	return b
}

// Join appends the items separated by sep, calling write for each.
func Join[T any](b *Builder, sep string, items []T, write func(*Builder, T)) *Builder {
	for i, it := range items {
		if i > 0 {
			b.WriteString(sep)
		}
		write(b, it)
	}
	return b
}

// AddError records err. A nil err is ignored.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the joined errors recorded so far.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Sub returns an empty builder for a nested statement. Its placeholders
// continue the numbering of b, so it must be embedded before b takes
// another argument.
func (b *Builder) Sub() *Builder {
	return &Builder{dialect: b.dialect, base: b.base + len(b.args)}
}

// Embed appends text, which stands for the statement of sub, followed by
// the arguments and errors of sub. text is sub.String() or a rewrite of it
// that keeps its placeholders in order.
func (b *Builder) Embed(text string, sub *Builder) *Builder {
	b.sb.WriteString(text)
	b.args = append(b.args, sub.args...)
	b.errs = append(b.errs, sub.errs...)
	return b
}

// Len returns the length of the statement text.
func (b *Builder) Len() int { return b.sb.Len() }

// String returns the statement text.
func (b *Builder) String() string { return b.sb.String() }

// Query returns the statement text and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}
