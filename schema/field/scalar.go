package field

import (
	"bytes"
	"reflect"
	"strconv"
)

type stringType struct{ size int }

// String returns a varchar codec with the default size.
func String() Type { return stringType{} }

// StringSize returns a varchar codec of size n.
func StringSize(n int) Type { return stringType{size: n} }

func (stringType) Name() string     { return "string" }
func (stringType) SQLType() string  { return "varchar" }
func (stringType) Nullable() bool   { return true }
func (t stringType) Size() int      { return t.size }
func (t stringType) Decode(src any) (any, error) {
	if s, ok := toString(src); ok {
		return s, nil
	}
	return nil, decodeError(t, src)
}
func (t stringType) Encode(v any) (any, error) {
	if s, ok := toString(v); ok {
		return s, nil
	}
	return nil, encodeError(t, v)
}

type intType struct{ name, sqlType string }

// Int returns an integer codec. Values decode to int64.
func Int() Type { return intType{name: "int", sqlType: "integer"} }

// Int64 returns a bigint codec. Values decode to int64.
func Int64() Type { return intType{name: "int64", sqlType: "bigint"} }

func (t intType) Name() string    { return t.name }
func (t intType) SQLType() string { return t.sqlType }
func (intType) Nullable() bool    { return false }
func (t intType) Decode(src any) (any, error) {
	if n, ok := toInt64(src); ok {
		return n, nil
	}
	return nil, decodeError(t, src)
}
func (t intType) Encode(v any) (any, error) {
	if _, ok := v.(string); !ok {
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	}
	return nil, encodeError(t, v)
}

type floatType struct{}

// Float returns a double precision codec. Values decode to float64.
func Float() Type { return floatType{} }

func (floatType) Name() string    { return "float" }
func (floatType) SQLType() string { return "double precision" }
func (floatType) Nullable() bool  { return false }
func (t floatType) Decode(src any) (any, error) {
	if f, ok := toFloat64(src); ok {
		return f, nil
	}
	return nil, decodeError(t, src)
}
func (t floatType) Encode(v any) (any, error) {
	if _, ok := v.(string); !ok {
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	}
	return nil, encodeError(t, v)
}

type boolType struct{}

// Bool returns a boolean codec.
func Bool() Type { return boolType{} }

func (boolType) Name() string    { return "bool" }
func (boolType) SQLType() string { return "boolean" }
func (boolType) Nullable() bool  { return false }
func (t boolType) Decode(src any) (any, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case []byte, string:
		s, _ := toString(v)
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
	default:
		if n, ok := toInt64(v); ok {
			return n != 0, nil
		}
	}
	return nil, decodeError(t, src)
}
func (t boolType) Encode(v any) (any, error) {
	if b, ok := toBool(v); ok {
		return b, nil
	}
	return nil, encodeError(t, v)
}

type boolIntType struct{}

// BoolInt returns a codec storing booleans as smallint 0 or 1.
// Any other stored value is a decode error.
func BoolInt() Type { return boolIntType{} }

func (boolIntType) Name() string    { return "boolint" }
func (boolIntType) SQLType() string { return "smallint" }
func (boolIntType) Nullable() bool  { return false }
func (t boolIntType) Decode(src any) (any, error) {
	if b, ok := src.(bool); ok {
		return b, nil
	}
	n, ok := toInt64(src)
	switch {
	case ok && n == 0:
		return false, nil
	case ok && n == 1:
		return true, nil
	}
	return nil, decodeError(t, src)
}
func (t boolIntType) Encode(v any) (any, error) {
	b, ok := toBool(v)
	if !ok {
		return nil, encodeError(t, v)
	}
	if b {
		return int64(1), nil
	}
	return int64(0), nil
}

type boolStringType struct{}

// BoolString returns a codec storing booleans as "T" or "F".
func BoolString() Type { return boolStringType{} }

func (boolStringType) Name() string    { return "boolstring" }
func (boolStringType) SQLType() string { return "varchar" }
func (boolStringType) Nullable() bool  { return false }
func (boolStringType) Size() int       { return 1 }
func (t boolStringType) Decode(src any) (any, error) {
	switch s, _ := toString(src); s {
	case "T":
		return true, nil
	case "F":
		return false, nil
	}
	return nil, decodeError(t, src)
}
func (t boolStringType) Encode(v any) (any, error) {
	b, ok := toBool(v)
	if !ok {
		return nil, encodeError(t, v)
	}
	if b {
		return "T", nil
	}
	return "F", nil
}

type bytesType struct{}

// Bytes returns a blob codec.
func Bytes() Type { return bytesType{} }

func (bytesType) Name() string    { return "bytes" }
func (bytesType) SQLType() string { return "blob" }
func (bytesType) Nullable() bool  { return true }
func (t bytesType) Decode(src any) (any, error) {
	switch v := src.(type) {
	case []byte:
		return bytes.Clone(v), nil
	case string:
		return []byte(v), nil
	}
	return nil, decodeError(t, src)
}
func (t bytesType) Encode(v any) (any, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, encodeError(t, v)
}

type genericType struct{}

// Generic returns a codec passing values through unchanged. It has no
// schema type, so tables using it cannot be created.
func Generic() Type { return genericType{} }

func (genericType) Name() string               { return "generic" }
func (genericType) SQLType() string            { return "" }
func (genericType) Nullable() bool             { return true }
func (genericType) Decode(src any) (any, error) { return src, nil }
func (genericType) Encode(v any) (any, error)  { return v, nil }

func toBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}
