package field

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type uuidType struct{}

// UUID returns a codec for uuid.UUID values, stored in text form.
func UUID() Type { return uuidType{} }

func (uuidType) Name() string    { return "uuid" }
func (uuidType) SQLType() string { return "varchar" }
func (uuidType) Nullable() bool  { return true }
func (uuidType) Size() int       { return 36 }

func (t uuidType) Decode(src any) (any, error) {
	switch v := src.(type) {
	case uuid.UUID:
		return v, nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case string:
		return uuid.Parse(v)
	}
	return nil, decodeError(t, src)
}

func (t uuidType) Encode(v any) (any, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	}
	return nil, encodeError(t, v)
}

type ulidType struct{}

// ULID returns a codec for ulid.ULID values, stored as 26 characters.
func ULID() Type { return ulidType{} }

func (ulidType) Name() string    { return "ulid" }
func (ulidType) SQLType() string { return "char" }
func (ulidType) Nullable() bool  { return true }
func (ulidType) Size() int       { return ulid.EncodedSize }

func (t ulidType) Decode(src any) (any, error) {
	switch v := src.(type) {
	case ulid.ULID:
		return v, nil
	case []byte:
		if len(v) == 16 {
			var id ulid.ULID
			copy(id[:], v)
			return id, nil
		}
		return ulid.Parse(string(v))
	case string:
		return ulid.Parse(v)
	}
	return nil, decodeError(t, src)
}

func (t ulidType) Encode(v any) (any, error) {
	switch v := v.(type) {
	case ulid.ULID:
		return v.String(), nil
	case string:
		id, err := ulid.Parse(v)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	}
	return nil, encodeError(t, v)
}
