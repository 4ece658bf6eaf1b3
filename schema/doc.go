// Package schema describes how entity types map to tables.
//
// A Descriptor is built once per entity type, then registered in a
// Registry shared by sessions and statement builders:
//
//	type User struct {
//		ID         int64
//		Name       string
//		Address    Address
//		InsertTime time.Time
//	}
//
//	var Users = schema.New[User]("users").
//		PK("ID", field.Int64(), schema.AutoIncrement()).
//		Field("Name", field.String(), schema.Column("username")).
//		Field("Address.City", field.StringSize(80)).
//		Field("InsertTime", field.Timestamp(), schema.NowOnInsert()).
//		MustBuild()
//
//	reg := schema.NewRegistry().MustRegister(Users)
//
// Properties are addressed by dotted paths of exported struct field names.
// Nested structs, pointers to structs and interfaces (with a concrete type
// registered through Builder.Abstract) may appear on the way.
//
// Column names default to the snake_case path with "_" between segments
// ("Address.City" maps to "address_city"), and table names to the
// pluralized snake_case type name.
//
// # Generated values
//
// A field has at most one Generation:
//
//   - AutoIncrement and Sequence are only valid on primary keys, and a
//     descriptor holds at most one of each. The session reads the new key
//     back into the entity after the INSERT.
//   - NowOnInsert, NowOnUpdate and NowOnBoth set the column to the current
//     time on the matching statements.
//   - AutoTimestamp columns are maintained by the store and never written.
//
// # Mixins
//
// A Mixin contributes field declarations, usually for a struct embedded in
// the entity:
//
//	type Timestamps struct {
//		CreatedAt time.Time
//		UpdatedAt time.Time
//	}
//
//	func (Timestamps) Fields() []schema.FieldDef {
//		return []schema.FieldDef{
//			schema.Prop("CreatedAt", field.Timestamp(), schema.NowOnInsert()),
//			schema.Prop("UpdatedAt", field.Timestamp(), schema.NowOnUpdate()),
//		}
//	}
//
// See contrib/mixin for ready-made ones.
package schema
