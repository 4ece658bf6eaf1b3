package field

import (
	"fmt"
	"slices"
)

type enumType struct {
	values []string
	byID   bool
}

// Enum returns a codec storing one of values by name. The column is a
// varchar sized to the longest value.
func Enum(values ...string) Type {
	return enumType{values: values}
}

// EnumID returns a codec storing one of values by its position.
func EnumID(values ...string) Type {
	return enumType{values: values, byID: true}
}

// Values returns the allowed values.
func (t enumType) Values() []string { return slices.Clone(t.values) }

func (t enumType) Name() string {
	if t.byID {
		return "enumid"
	}
	return "enum"
}

func (t enumType) SQLType() string {
	if t.byID {
		return "smallint"
	}
	return "varchar"
}

func (enumType) Nullable() bool { return true }

// Size returns the length of the longest value for name-stored enums.
func (t enumType) Size() int {
	if t.byID {
		return 0
	}
	n := 0
	for _, v := range t.values {
		n = max(n, len(v))
	}
	return n
}

func (t enumType) Decode(src any) (any, error) {
	if t.byID {
		id, ok := toInt64(src)
		if !ok || id < 0 || id >= int64(len(t.values)) {
			return nil, decodeError(t, src)
		}
		return t.values[id], nil
	}
	s, ok := toString(src)
	if !ok || !slices.Contains(t.values, s) {
		return nil, decodeError(t, src)
	}
	return s, nil
}

func (t enumType) Encode(v any) (any, error) {
	s, ok := toString(v)
	if !ok {
		return nil, encodeError(t, v)
	}
	i := slices.Index(t.values, s)
	if i < 0 {
		return nil, fmt.Errorf("field: %s: %q is not one of %v", t.Name(), s, t.values)
	}
	if t.byID {
		return int64(i), nil
	}
	return s, nil
}
