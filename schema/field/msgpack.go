package field

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackType[T any] struct{}

// Msgpack returns a codec storing values of type T as a MessagePack blob.
// Decoded values have type T.
func Msgpack[T any]() Type { return msgpackType[T]{} }

func (msgpackType[T]) Name() string    { return "msgpack" }
func (msgpackType[T]) SQLType() string { return "blob" }
func (msgpackType[T]) Nullable() bool  { return true }

func (t msgpackType[T]) Decode(src any) (any, error) {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, decodeError(t, src)
	}
	var out T
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("field: msgpack: %w", err)
	}
	return out, nil
}

func (t msgpackType[T]) Encode(v any) (any, error) {
	if _, ok := v.(T); !ok {
		return nil, encodeError(t, v)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("field: msgpack: %w", err)
	}
	return data, nil
}
