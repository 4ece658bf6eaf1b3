// Package schema models the tables derived from entity descriptors and
// renders their DDL.
package schema

import (
	"strconv"
	"strings"
)

// Column is a table column.
type Column struct {
	Name     string
	Type     string // schema type name, e.g. "varchar" or "integer AUTO_INCREMENT"
	Size     int    // rendered as Type(Size) when positive
	Nullable bool
}

// SQL renders the column definition.
func (c *Column) SQL() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	sb.WriteString(c.Type)
	if c.Size > 0 {
		sb.WriteByte('(')
		sb.WriteString(strconv.Itoa(c.Size))
		sb.WriteByte(')')
	}
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	return sb.String()
}

// Table is a table with its columns and primary key.
type Table struct {
	Name       string
	Columns    []*Column
	PrimaryKey []*Column
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends c to the table.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimary appends c to the table and to its primary key.
func (t *Table) AddPrimary(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// CreateSQL renders the CREATE TABLE statement. With inlinePK the primary
// key is declared as a table constraint instead of a separate ALTER TABLE.
func (t *Table) CreateSQL(inlinePK bool) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(t.Name)
	sb.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.SQL())
	}
	if inlinePK && len(t.PrimaryKey) > 0 {
		sb.WriteString(", PRIMARY KEY (")
		sb.WriteString(t.primaryKeyList())
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
	return sb.String()
}

// AddPrimaryKeySQL renders the ALTER TABLE statement adding the primary
// key, or an empty string if the table has none.
func (t *Table) AddPrimaryKeySQL() string {
	if len(t.PrimaryKey) == 0 {
		return ""
	}
	return "ALTER TABLE " + t.Name + " ADD PRIMARY KEY (" + t.primaryKeyList() + ")"
}

// DropSQL renders the DROP TABLE statement.
func (t *Table) DropSQL() string {
	return "DROP TABLE " + t.Name
}

// Statements returns the statements creating the table.
func (t *Table) Statements(inlinePK bool) []string {
	stmts := []string{t.CreateSQL(inlinePK)}
	if !inlinePK {
		if pk := t.AddPrimaryKeySQL(); pk != "" {
			stmts = append(stmts, pk)
		}
	}
	return stmts
}

func (t *Table) primaryKeyList() string {
	names := make([]string, len(t.PrimaryKey))
	for i, c := range t.PrimaryKey {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
