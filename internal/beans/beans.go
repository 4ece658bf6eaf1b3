// Package beans reads and writes entity properties addressed by dotted
// paths such as "Address.City".
//
// Path segments name struct fields, including fields promoted from
// embedded structs. Intermediate segments may be structs, pointers to
// structs, or interfaces holding pointers to structs. Interface-typed
// intermediates are instantiated through an Abstract resolver.
package beans

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Abstract returns the concrete type to instantiate for an interface-typed
// path prefix. The type may be a struct or a pointer to a struct.
type Abstract func(prefix string) (reflect.Type, bool)

// Split splits a dotted path into its segments.
func Split(path string) []string { return strings.Split(path, ".") }

// Indirect returns the struct type behind t, dereferencing pointers.
func Indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// TypeOf resolves the Go type of the property at path within struct type t.
func TypeOf(t reflect.Type, path string, abs Abstract) (reflect.Type, error) {
	segs := Split(path)
	cur := Indirect(t)
	for i, seg := range segs {
		if cur.Kind() == reflect.Interface {
			prefix := strings.Join(segs[:i], ".")
			ct, ok := lookup(abs, prefix)
			if !ok {
				return nil, fmt.Errorf("beans: %s: %q is an interface without a concrete type", t.Name(), prefix)
			}
			cur = Indirect(ct)
		}
		if cur.Kind() != reflect.Struct {
			return nil, fmt.Errorf("beans: %s: %q is not a struct", t.Name(), strings.Join(segs[:i], "."))
		}
		sf, ok := cur.FieldByName(seg)
		if !ok || !sf.IsExported() {
			return nil, fmt.Errorf("beans: %s has no exported property %q", t.Name(), path)
		}
		cur = sf.Type
		if i < len(segs)-1 {
			for cur.Kind() == reflect.Pointer {
				cur = cur.Elem()
			}
		}
	}
	return cur, nil
}

func lookup(abs Abstract, prefix string) (reflect.Type, bool) {
	if abs == nil {
		return nil, false
	}
	return abs(prefix)
}

// root returns the addressable struct behind the entity pointer e.
func root(e any) (reflect.Value, error) {
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("beans: entity must be a non-nil pointer, got %T", e)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("beans: entity must point to a struct, got %T", e)
	}
	return v, nil
}

// Get returns the property value at path. The returned value is invalid
// when an intermediate pointer or interface is nil.
func Get(e any, path string) reflect.Value {
	v, err := root(e)
	if err != nil {
		return reflect.Value{}
	}
	segs := Split(path)
	for i, seg := range segs {
		v = field(v, seg)
		if !v.IsValid() || i == len(segs)-1 {
			return v
		}
		if v = deref(v); !v.IsValid() {
			return v
		}
	}
	return v
}

// Value returns the property value at path as a plain Go value: pointers
// are dereferenced and a nil pointer or unreachable path yields nil.
func Value(e any, path string) any {
	return Normalize(Get(e, path))
}

// Normalize converts a property value to the form bound to statements and
// kept in snapshots.
func Normalize(v reflect.Value) any {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.IsNil() {
		return nil
	}
	return v.Interface()
}

// IsSet reports whether the property value at path counts as provided.
//
// Booleans are set only when true and numbers only when non-zero. Strings,
// structs (time.Time included) and arrays are set when non-zero. Pointers,
// interfaces, slices and maps are set when non-nil, whatever they hold.
func IsSet(e any, path string) bool {
	return isSet(Get(e, path))
}

func isSet(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return !v.IsNil()
	default:
		return !v.IsZero()
	}
}

// Set assigns v to the property at path, instantiating nil intermediates.
// A nil v stores the zero value of the property.
func Set(e any, path string, v any, abs Abstract) error {
	rv, err := root(e)
	if err != nil {
		return err
	}
	segs := Split(path)
	for i, seg := range segs[:len(segs)-1] {
		fv := field(rv, seg)
		if !fv.IsValid() {
			return fmt.Errorf("beans: %T has no property %q", e, path)
		}
		if rv, err = alloc(fv, strings.Join(segs[:i+1], "."), abs); err != nil {
			return err
		}
	}
	fv := field(rv, segs[len(segs)-1])
	if !fv.IsValid() || !fv.CanSet() {
		return fmt.Errorf("beans: %T has no settable property %q", e, path)
	}
	if err := assign(fv, v); err != nil {
		return fmt.Errorf("beans: %T.%s: %w", e, path, err)
	}
	return nil
}

// Child returns a pointer to the struct at path. With create, nil
// intermediates and the child itself are instantiated; without it, a nil
// child yields nil.
func Child(e any, path string, create bool, abs Abstract) (any, error) {
	rv, err := root(e)
	if err != nil {
		return nil, err
	}
	segs := Split(path)
	for i, seg := range segs {
		fv := field(rv, seg)
		if !fv.IsValid() {
			if create {
				return nil, fmt.Errorf("beans: %T has no property %q", e, path)
			}
			return nil, nil
		}
		if create {
			if rv, err = alloc(fv, strings.Join(segs[:i+1], "."), abs); err != nil {
				return nil, err
			}
			continue
		}
		if rv = deref(fv); !rv.IsValid() {
			return nil, nil
		}
	}
	if rv.Kind() != reflect.Struct || !rv.CanAddr() {
		return nil, fmt.Errorf("beans: %T.%s is not a struct", e, path)
	}
	return rv.Addr().Interface(), nil
}

// Equal reports whether two normalized values are equal. Times compare by
// instant and byte slices by content.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	}
	return reflect.DeepEqual(a, b)
}

// Clone returns a copy of a normalized value safe to keep in a snapshot.
func Clone(v any) any {
	if b, ok := v.([]byte); ok {
		return bytes.Clone(b)
	}
	return v
}

// New returns a pointer to a new zero value of the struct type behind t.
func New(t reflect.Type) any {
	return reflect.New(Indirect(t)).Interface()
}

// field returns the named field of struct v, or an invalid value when the
// field does not exist or sits behind a nil embedded pointer.
func field(v reflect.Value, name string) reflect.Value {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	sf, ok := v.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}
	}
	fv, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}
	}
	return fv
}

// deref follows pointers and interfaces down to a struct. It returns an
// invalid value when one of them is nil.
func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// alloc returns the struct held by fv, instantiating nil pointers and
// interfaces on the way.
func alloc(fv reflect.Value, prefix string, abs Abstract) (reflect.Value, error) {
	for {
		switch fv.Kind() {
		case reflect.Struct:
			return fv, nil
		case reflect.Pointer:
			if fv.IsNil() {
				if !fv.CanSet() {
					return reflect.Value{}, fmt.Errorf("beans: cannot instantiate %q", prefix)
				}
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		case reflect.Interface:
			if fv.IsNil() {
				ct, ok := lookup(abs, prefix)
				if !ok {
					return reflect.Value{}, fmt.Errorf("beans: %q is an interface without a concrete type", prefix)
				}
				nv := reflect.New(Indirect(ct))
				if !nv.Type().Implements(fv.Type()) {
					return reflect.Value{}, fmt.Errorf("beans: %s does not implement %s at %q", nv.Type(), fv.Type(), prefix)
				}
				fv.Set(nv)
			}
			fv = fv.Elem()
			if fv.Kind() != reflect.Pointer {
				return reflect.Value{}, fmt.Errorf("beans: %q holds a non-pointer %s", prefix, fv.Type())
			}
		default:
			return reflect.Value{}, fmt.Errorf("beans: %q is not a struct", prefix)
		}
	}
}

// assign stores v into dst, converting between numeric kinds and between
// string kinds, and wrapping into a pointer when dst is one.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	t := dst.Type()
	if t.Kind() == reflect.Pointer {
		if rv := reflect.ValueOf(v); rv.Type().AssignableTo(t) {
			dst.Set(rv)
			return nil
		}
		p := reflect.New(t.Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	cv, err := Convert(v, t)
	if err != nil {
		return err
	}
	dst.Set(cv)
	return nil
}

// Convert converts v to type t. Only lossless conversions between kinds of
// the same family (integers, floats, strings, bools, byte slices) are
// performed; integers are checked for overflow.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	out := reflect.New(t).Elem()
	switch {
	case isInt(t.Kind()) && isInt(rv.Kind()):
		n := rv.Int()
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, t)
		}
		out.SetInt(n)
	case isInt(t.Kind()) && isUint(rv.Kind()):
		n := rv.Uint()
		if n > 1<<63-1 || out.OverflowInt(int64(n)) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, t)
		}
		out.SetInt(int64(n))
	case isUint(t.Kind()) && isInt(rv.Kind()):
		n := rv.Int()
		if n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, t)
		}
		out.SetUint(uint64(n))
	case isUint(t.Kind()) && isUint(rv.Kind()):
		n := rv.Uint()
		if out.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, t)
		}
		out.SetUint(n)
	case isFloat(t.Kind()) && isFloat(rv.Kind()):
		out.SetFloat(rv.Float())
	case isFloat(t.Kind()) && isInt(rv.Kind()):
		out.SetFloat(float64(rv.Int()))
	case t.Kind() == reflect.String && rv.Kind() == reflect.String,
		t.Kind() == reflect.Bool && rv.Kind() == reflect.Bool:
		out.Set(rv.Convert(t))
	case t.Kind() == reflect.Slice && rv.Kind() == reflect.Slice && rv.Type().ConvertibleTo(t):
		out.Set(rv.Convert(t))
	case t.Kind() == reflect.Array && rv.Kind() == reflect.Array && rv.Type().ConvertibleTo(t):
		out.Set(rv.Convert(t))
	default:
		return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", v, t)
	}
	return out, nil
}

func isInt(k reflect.Kind) bool { return k >= reflect.Int && k <= reflect.Int64 }

func isUint(k reflect.Kind) bool { return k >= reflect.Uint && k <= reflect.Uintptr }

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }
