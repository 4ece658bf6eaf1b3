package schema

import (
	"reflect"
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/trigger"
)

// Option configures a field.
type Option func(*Field)

// Column sets the column name. The default is derived from the property
// path by ColumnName.
func Column(name string) Option {
	return func(f *Field) { f.Column = name }
}

// AutoIncrement marks a primary key assigned by the store on insert.
func AutoIncrement() Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenAutoIncrement} }
}

// Sequence marks a primary key drawn from the named sequence on insert.
// An empty name selects the dialect default.
func Sequence(name string) Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenSequence, Sequence: name} }
}

// NowOnInsert sets the column to the current time on insert.
func NowOnInsert() Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenNowOnInsert} }
}

// NowOnUpdate sets the column to the current time on every update.
func NowOnUpdate() Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenNowOnUpdate} }
}

// NowOnBoth sets the column to the current time on insert and update.
func NowOnBoth() Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenNowOnBoth} }
}

// AutoTimestamp marks a column maintained by the store. It is read but
// never written.
func AutoTimestamp() Option {
	return func(f *Field) { f.Gen = Generation{Kind: GenAutoTimestamp} }
}

// FieldDef is a field declaration contributed by a Mixin.
type FieldDef struct {
	Prop string
	Type field.Type
	PK   bool
	Opts []Option
}

// Prop declares a regular field for a Mixin.
func Prop(prop string, t field.Type, opts ...Option) FieldDef {
	return FieldDef{Prop: prop, Type: t, Opts: opts}
}

// Key declares a primary key field for a Mixin.
func Key(prop string, t field.Type, opts ...Option) FieldDef {
	return FieldDef{Prop: prop, Type: t, PK: true, Opts: opts}
}

// Mixin is a reusable set of field declarations, usually paired with a
// struct embedded in the entity.
type Mixin interface {
	Fields() []FieldDef
}

// Builder declares the mapping of entity type T.
//
//	schema.New[User]("users").
//		PK("ID", field.Int(), schema.AutoIncrement()).
//		Field("Name", field.String(), schema.Column("username")).
//		Field("Address.City", field.StringSize(80)).
//		MustBuild()
type Builder struct {
	typ      reflect.Type
	table    string
	fields   []*Field
	abstract map[string]reflect.Type
	triggers []trigger.Listener
}

// New starts the descriptor of the struct type T. An empty table selects
// TableName of the type name.
func New[T any](table string) *Builder {
	return NewOf(reflect.TypeFor[T](), table)
}

// NewOf is New for a type known only at run time.
func NewOf(t reflect.Type, table string) *Builder {
	return &Builder{typ: beans.Indirect(t), table: table, abstract: map[string]reflect.Type{}}
}

// Field declares a regular property.
func (b *Builder) Field(prop string, t field.Type, opts ...Option) *Builder {
	return b.add(prop, t, false, opts)
}

// PK declares a primary key property.
func (b *Builder) PK(prop string, t field.Type, opts ...Option) *Builder {
	return b.add(prop, t, true, opts)
}

// Mixin declares the fields of every mixin, in order.
func (b *Builder) Mixin(ms ...Mixin) *Builder {
	for _, m := range ms {
		for _, fd := range m.Fields() {
			b.add(fd.Prop, fd.Type, fd.PK, fd.Opts)
		}
	}
	return b
}

// Abstract registers the concrete type instantiated when a nil
// interface-typed property is populated. concrete may be a struct or a
// pointer to one; a pointer to it must implement the interface.
func (b *Builder) Abstract(prop string, concrete reflect.Type) *Builder {
	b.abstract[prop] = concrete
	return b
}

// Trigger registers a descriptor-level listener.
func (b *Builder) Trigger(l trigger.Listener) *Builder {
	b.triggers = append(b.triggers, l)
	return b
}

// add declares a field. Declaring the same property again replaces the
// earlier declaration in place.
func (b *Builder) add(prop string, t field.Type, pk bool, opts []Option) *Builder {
	f := &Field{Name: prop, Column: ColumnName(prop), Type: t, PK: pk}
	for _, opt := range opts {
		opt(f)
	}
	for i, prev := range b.fields {
		if prev.Name == prop {
			b.fields[i] = f
			return b
		}
	}
	b.fields = append(b.fields, f)
	return b
}

// Build validates the declarations and returns the descriptor.
func (b *Builder) Build() (*Descriptor, error) {
	name := b.typ.Name()
	if b.typ.Kind() != reflect.Struct {
		return nil, rowmap.NewSchemaConfigError(name, "%s is not a struct", b.typ)
	}
	if len(b.fields) == 0 {
		return nil, rowmap.NewSchemaConfigError(name, "no fields declared")
	}
	d := &Descriptor{
		typ:        b.typ,
		table:      b.table,
		byName:     make(map[string]*Field, len(b.fields)),
		abstract:   make(map[string]reflect.Type, len(b.abstract)),
		dispatcher: &trigger.Dispatcher{},
	}
	if d.table == "" {
		d.table = TableName(name)
	}
	for k, v := range b.abstract {
		d.abstract[k] = v
	}
	for _, f := range b.fields {
		if f.Type == nil {
			return nil, rowmap.NewSchemaConfigError(name, "field %q has no type", f.Name)
		}
		for _, prev := range d.fields {
			if sameName(prev.Name, f.Name) {
				return nil, rowmap.NewSchemaConfigError(name, "duplicate field %q (%q)", f.Name, prev.Name)
			}
			if strings.EqualFold(prev.Column, f.Column) {
				return nil, rowmap.NewSchemaConfigError(name, "fields %q and %q share column %q", prev.Name, f.Name, f.Column)
			}
		}
		gt, err := beans.TypeOf(b.typ, f.Name, d.AbstractType)
		if err != nil {
			return nil, rowmap.NewSchemaConfigError(name, "field %q: %v", f.Name, err)
		}
		f := *f
		f.GoType = gt
		if f.Optional, err = optional(b.typ, f.Name, d.AbstractType); err != nil {
			return nil, rowmap.NewSchemaConfigError(name, "field %q: %v", f.Name, err)
		}
		if err := d.addField(&f); err != nil {
			return nil, err
		}
	}
	for _, l := range b.triggers {
		d.dispatcher.Add(l)
	}
	return d, nil
}

// optional reports whether a parent of the property at path is a pointer
// or an interface.
func optional(t reflect.Type, path string, abs beans.Abstract) (bool, error) {
	segs := beans.Split(path)
	for i := 1; i < len(segs); i++ {
		pt, err := beans.TypeOf(t, strings.Join(segs[:i], "."), abs)
		if err != nil {
			return false, err
		}
		if k := pt.Kind(); k == reflect.Pointer || k == reflect.Interface {
			return true, nil
		}
	}
	return false, nil
}

func (d *Descriptor) addField(f *Field) error {
	switch f.Gen.Kind {
	case GenSequence:
		if !f.PK {
			return rowmap.NewSchemaConfigError(d.Name(), "sequence field %q must be a primary key", f.Name)
		}
		if d.sequence != nil {
			return rowmap.NewSchemaConfigError(d.Name(), "more than one sequence field (%q, %q)", d.sequence.Name, f.Name)
		}
		d.sequence = f
	case GenAutoIncrement:
		if !f.PK {
			return rowmap.NewSchemaConfigError(d.Name(), "auto-increment field %q must be a primary key", f.Name)
		}
		if d.autoinc != nil {
			return rowmap.NewSchemaConfigError(d.Name(), "more than one auto-increment field (%q, %q)", d.autoinc.Name, f.Name)
		}
		d.autoinc = f
	}
	d.fields = append(d.fields, f)
	d.byName[f.Name] = f
	if f.PK {
		d.pks = append(d.pks, f)
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
