package session

import (
	"context"
	"slices"

	"github.com/syssam/rowmap"
	sqlschema "github.com/syssam/rowmap/dialect/sql/schema"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

// Table derives the table of d under the session dialect.
func (s *Session) Table(d *schema.Descriptor) (*sqlschema.Table, error) {
	t := sqlschema.NewTable(d.Table())
	for _, f := range d.Fields() {
		typ, size, err := s.columnType(d, f)
		if err != nil {
			return nil, err
		}
		c := &sqlschema.Column{Name: f.Column, Type: typ, Size: size, Nullable: f.Nullable()}
		if f.PK {
			t.AddPrimary(c)
		} else {
			t.AddColumn(c)
		}
	}
	return t, nil
}

// columnType returns the schema type and size of f.
func (s *Session) columnType(d *schema.Descriptor, f *schema.Field) (string, int, error) {
	if typ, ok := s.dialect.ColumnType(f); ok {
		return typ, 0, nil
	}
	typ := f.Type.SQLType()
	if typ == "" {
		return "", 0, rowmap.NewSchemaConfigError(d.Name(), "field %q: %s type has no schema type", f.Name, f.Type.Name())
	}
	if _, ok := f.Type.(field.Sized); !ok {
		return typ, 0, nil
	}
	size := f.Size()
	if size <= 0 && typ == "varchar" && !s.dialect.UnlimitedVarchar() {
		size = s.varchar
	}
	return typ, size, nil
}

// Statements returns the statements creating the table of d.
func (s *Session) Statements(d *schema.Descriptor) ([]string, error) {
	t, err := s.Table(d)
	if err != nil {
		return nil, err
	}
	return t.Statements(s.dialect.InlinePrimaryKey()), nil
}

// CreateTable creates the table of d and its primary key in one
// transaction.
func (s *Session) CreateTable(ctx context.Context, d *schema.Descriptor) error {
	stmts, err := s.Statements(d)
	if err != nil {
		return err
	}
	return s.execTx(ctx, "create table", stmts)
}

func (s *Session) execTx(ctx context.Context, op string, stmts []string) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return rowmap.NewStorageError(op, "", err)
	}
	for _, query := range stmts {
		if err := tx.Exec(ctx, query, []any{}, nil); err != nil {
			return rollback(tx, rowmap.NewStorageError(op, query, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return rowmap.NewStorageError(op, "", err)
	}
	return nil
}

// DropTable drops the table of d.
func (s *Session) DropTable(ctx context.Context, d *schema.Descriptor) error {
	query := sqlschema.NewTable(d.Table()).DropSQL()
	_, err := s.exec(ctx, "drop table", query, []any{})
	return err
}

// CreateTables validates the tables of every registered descriptor and
// creates them in registration order.
func (s *Session) CreateTables(ctx context.Context) error {
	ds := s.reg.Descriptors()
	tables := make([]*sqlschema.Table, len(ds))
	for i, d := range ds {
		t, err := s.Table(d)
		if err != nil {
			return err
		}
		tables[i] = t
	}
	res := sqlschema.ValidateSchema(tables)
	for _, w := range res.Warnings {
		s.log.WarnContext(ctx, "schema warning", "table", w.Table, "message", w.Message)
	}
	if err := res.Err(); err != nil {
		return rowmap.NewSchemaConfigError("", "%v", err)
	}
	for _, t := range tables {
		if err := s.execTx(ctx, "create table", t.Statements(s.dialect.InlinePrimaryKey())); err != nil {
			return err
		}
	}
	return nil
}

// DropTables drops the table of every registered descriptor, in reverse
// registration order.
func (s *Session) DropTables(ctx context.Context) error {
	ds := s.reg.Descriptors()
	slices.Reverse(ds)
	for _, d := range ds {
		if err := s.DropTable(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
