package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/rowmap/internal/beans"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/trigger"
)

// GenKind tells how the value of a column is generated.
type GenKind uint8

// Generation kinds.
const (
	// GenNone means the property value is always bound.
	GenNone GenKind = iota
	// GenAutoIncrement is a primary key assigned by the store on insert.
	GenAutoIncrement
	// GenSequence is a primary key drawn from a named sequence on insert.
	GenSequence
	// GenNowOnInsert is set to the current time on insert.
	GenNowOnInsert
	// GenNowOnUpdate is set to the current time on every update.
	GenNowOnUpdate
	// GenNowOnBoth is set to the current time on insert and update.
	GenNowOnBoth
	// GenAutoTimestamp is maintained by the store and never written.
	GenAutoTimestamp
)

func (k GenKind) String() string {
	switch k {
	case GenNone:
		return "none"
	case GenAutoIncrement:
		return "autoincrement"
	case GenSequence:
		return "sequence"
	case GenNowOnInsert:
		return "now_on_insert"
	case GenNowOnUpdate:
		return "now_on_update"
	case GenNowOnBoth:
		return "now_on_both"
	case GenAutoTimestamp:
		return "auto_timestamp"
	}
	return fmt.Sprintf("GenKind(%d)", k)
}

// Generation is the generation strategy of a field.
type Generation struct {
	Kind GenKind
	// Sequence is the sequence name of a GenSequence field. Empty means
	// the dialect default.
	Sequence string
}

// Key reports whether the store generates the value on insert.
func (g Generation) Key() bool {
	return g.Kind == GenAutoIncrement || g.Kind == GenSequence
}

// OnInsert reports whether the column is set to the current time on insert.
func (g Generation) OnInsert() bool {
	return g.Kind == GenNowOnInsert || g.Kind == GenNowOnBoth
}

// OnUpdate reports whether the column is set to the current time on update.
func (g Generation) OnUpdate() bool {
	return g.Kind == GenNowOnUpdate || g.Kind == GenNowOnBoth
}

// Field maps one property to one column.
type Field struct {
	// Name is the property path, e.g. "Name" or "Address.City".
	Name   string
	Column string
	Type   field.Type
	PK     bool
	Gen    Generation
	// GoType is the type of the property.
	GoType reflect.Type
	// Optional is set when a pointer or interface on the path may leave
	// the property unreachable, such as "Company.ID" with Company a
	// *Company.
	Optional bool
}

// Nullable reports whether the column accepts NULL. Primary keys never do.
func (f *Field) Nullable() bool {
	if f.PK {
		return false
	}
	return f.Type.Nullable() || f.Optional || (f.GoType != nil && f.GoType.Kind() == reflect.Pointer)
}

// Size returns the declared size of the codec.
func (f *Field) Size() int { return field.SizeOf(f.Type) }

// Numeric reports whether the property holds an integer or float.
func (f *Field) Numeric() bool {
	if f.GoType == nil {
		return false
	}
	switch beans.Indirect(f.GoType).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (f *Field) String() string {
	return fmt.Sprintf("%s(%s %s)", f.Name, f.Column, f.Type.Name())
}

// Descriptor maps an entity type to a table. It is immutable once built,
// except for its trigger listeners.
type Descriptor struct {
	typ        reflect.Type
	table      string
	fields     []*Field
	pks        []*Field
	byName     map[string]*Field
	sequence   *Field
	autoinc    *Field
	abstract   map[string]reflect.Type
	dispatcher *trigger.Dispatcher
}

// Name returns the entity type name.
func (d *Descriptor) Name() string { return d.typ.Name() }

// Type returns the entity struct type.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Table returns the table name.
func (d *Descriptor) Table() string { return d.table }

// Fields returns the fields in declaration order.
func (d *Descriptor) Fields() []*Field { return d.fields }

// PKs returns the primary key fields in declaration order.
func (d *Descriptor) PKs() []*Field { return d.pks }

// HasPK reports whether the descriptor declares a primary key.
func (d *Descriptor) HasPK() bool { return len(d.pks) > 0 }

// Field returns the field of the named property, or nil.
func (d *Descriptor) Field(name string) *Field { return d.byName[name] }

// FieldByColumn returns the field mapped to column, or nil.
func (d *Descriptor) FieldByColumn(column string) *Field {
	for _, f := range d.fields {
		if f.Column == column {
			return f
		}
	}
	return nil
}

// SequenceField returns the sequence-generated key, or nil.
func (d *Descriptor) SequenceField() *Field { return d.sequence }

// AutoIncrementField returns the auto-increment key, or nil.
func (d *Descriptor) AutoIncrementField() *Field { return d.autoinc }

// AbstractType returns the concrete type registered for an interface-typed
// property prefix.
func (d *Descriptor) AbstractType(prefix string) (reflect.Type, bool) {
	t, ok := d.abstract[prefix]
	return t, ok
}

// Triggers returns the dispatcher of descriptor-level listeners.
func (d *Descriptor) Triggers() *trigger.Dispatcher { return d.dispatcher }

// New returns a pointer to a new zero entity.
func (d *Descriptor) New() any { return reflect.New(d.typ).Interface() }

func (d *Descriptor) String() string {
	return fmt.Sprintf("Descriptor(%s table=%s)", d.Name(), d.table)
}
