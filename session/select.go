package session

import (
	"fmt"
	"strings"

	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/schema"
)

// Projection restricts the non-key columns of a statement. Primary keys
// are always selected. Properties are matched case-insensitively.
type Projection struct {
	Include []string
	Exclude []string
}

// Fields returns the fields of d selected by p, in descriptor order.
func (p Projection) Fields(d *schema.Descriptor) []*schema.Field {
	if len(p.Include) == 0 && len(p.Exclude) == 0 {
		return d.Fields()
	}
	var fields []*schema.Field
	for _, f := range d.Fields() {
		if p.selects(d, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (p Projection) selects(d *schema.Descriptor, f *schema.Field) bool {
	switch {
	case f.PK:
		return true
	case len(p.Include) > 0 && !names(d, p.Include, f):
		return false
	}
	return !names(d, p.Exclude, f)
}

func names(d *schema.Descriptor, props []string, f *schema.Field) bool {
	for _, prop := range props {
		if strings.EqualFold(PropertyToColumn(d, prop), f.Column) {
			return true
		}
	}
	return false
}

// PropertyToColumn returns the column of the property prop of d, matched
// case-insensitively. An unknown property is returned as is, so that
// columns may be named directly.
func PropertyToColumn(d *schema.Descriptor, prop string) string {
	if f := d.Field(prop); f != nil {
		return f.Column
	}
	for _, f := range d.Fields() {
		if strings.EqualFold(f.Name, prop) {
			return f.Column
		}
	}
	return prop
}

// ColumnLabel returns the result label of column col under alias:
// "alias_col", or col without alias.
func ColumnLabel(alias, col string) string {
	if alias == "" {
		return col
	}
	return alias + "_" + col
}

// BuildSelect renders the select list of d under p. With an alias, every
// column is qualified and labeled: "u.id u_id,u.username u_username".
func BuildSelect(d *schema.Descriptor, alias string, p Projection) string {
	var sb strings.Builder
	for i, f := range p.Fields(d) {
		if i > 0 {
			sb.WriteByte(',')
		}
		if alias == "" {
			sb.WriteString(f.Column)
			continue
		}
		sb.WriteString(alias)
		sb.WriteByte('.')
		sb.WriteString(f.Column)
		sb.WriteByte(' ')
		sb.WriteString(ColumnLabel(alias, f.Column))
	}
	return sb.String()
}

// Populate decodes the columns of d selected by p from rec into e. A NULL
// nested property whose parent is nil leaves the parent nil.
func Populate(rec sql.Record, e any, d *schema.Descriptor, alias string, p Projection) error {
	for _, f := range p.Fields(d) {
		label := ColumnLabel(alias, f.Column)
		raw, ok := rec.Get(label)
		if !ok {
			return fmt.Errorf("session: %s: column %q missing from result", d.Name(), label)
		}
		var v any
		if raw != nil {
			dv, err := f.Type.Decode(raw)
			if err != nil {
				return fmt.Errorf("session: decode %s.%s: %w", d.Name(), f.Name, err)
			}
			v = dv
		} else if !beans.Get(e, f.Name).IsValid() {
			continue
		}
		if err := beans.Set(e, f.Name, v, d.AbstractType); err != nil {
			return err
		}
	}
	return nil
}
