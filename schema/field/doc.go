// Package field provides the scalar codecs used by entity descriptors.
//
// A codec converts between the Go value of an entity property and the
// value bound to, or read from, a statement, and names the schema type
// used when the table is created:
//
//	field.String()          // varchar(200), nullable
//	field.StringSize(50)    // varchar(50)
//	field.Int()             // integer
//	field.Int64()           // bigint
//	field.Float()           // double precision
//	field.Bool()            // boolean
//	field.BoolInt()         // smallint, 0 or 1
//	field.BoolString()      // varchar(1), "T" or "F"
//	field.Timestamp()       // timestamp
//	field.Date()            // date
//	field.Time()            // time
//	field.Bytes()           // blob
//	field.Enum("a", "bb")   // varchar(2), stored by name
//	field.EnumID("a", "bb") // smallint, stored by position
//	field.UUID()            // varchar(36), uuid.UUID
//	field.ULID()            // char(26), ulid.ULID
//	field.Msgpack[Prefs]()  // blob, MessagePack encoded Prefs
//	field.Generic()         // no schema type
//
// Numeric and boolean codecs are not nullable, so their columns are
// created NOT NULL unless the property is a pointer. Integer codecs decode
// to int64 and Float to float64; the session converts them to the
// property's own numeric type.
//
// Custom codecs implement Type, and Sized when their schema type takes a
// size.
package field
