package field

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// DefaultSize is the size used for sized types declared without one.
const DefaultSize = 200

// Type is a scalar codec: it converts between entity property values and
// driver values and names the schema type of the column.
//
// Decode and Encode are never called with nil; a NULL column leaves the
// property at its zero value and a nil property binds NULL.
type Type interface {
	// Name identifies the codec, e.g. "string" or "uuid". Dialects use it
	// to override schema types.
	Name() string
	// SQLType returns the schema type name, or "" for generic codecs
	// that cannot take part in table creation.
	SQLType() string
	// Nullable reports whether the column accepts NULL.
	Nullable() bool
	// Decode converts a driver value read from a row into the Go value
	// assigned to the property.
	Decode(src any) (any, error)
	// Encode converts a property value into the value bound to a statement.
	Encode(v any) (any, error)
}

// Sized is implemented by types whose schema type takes a size.
// A size <= 0 means unspecified.
type Sized interface {
	Size() int
}

// SizeOf returns the declared size of t, or 0.
func SizeOf(t Type) int {
	if s, ok := t.(Sized); ok {
		return s.Size()
	}
	return 0
}

func decodeError(t Type, src any) error {
	return fmt.Errorf("field: %s: cannot decode %T (%v)", t.Name(), src, src)
}

func encodeError(t Type, v any) error {
	return fmt.Errorf("field: %s: cannot encode %T (%v)", t.Name(), v, v)
}

// toInt64 converts integer, integral float and numeric text values that
// fit in an int64.
func toInt64(src any) (int64, bool) {
	switch v := src.(type) {
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < math.MinInt64 || f >= math.MaxInt64 || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func toFloat64(src any) (float64, bool) {
	switch v := src.(type) {
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// toString converts strings, named string types and byte slices.
func toString(src any) (string, bool) {
	switch v := src.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	if rv := reflect.ValueOf(src); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	if s, ok := src.(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}
