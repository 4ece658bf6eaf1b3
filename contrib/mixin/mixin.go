// Package mixin provides common field sets for schema builders.
//
// Each mixin is a struct the entity embeds and a schema.Mixin declaring
// the embedded properties:
//
//	type User struct {
//	    mixin.UUID
//	    mixin.Time
//	    Name string
//	}
//
//	schema.New[User]("").
//	    Mixin(mixin.UUID{}, mixin.Time{}).
//	    Field("Name", field.String()).
//	    Trigger(mixin.Keys{}).
//	    MustBuild()
//
// These mixins are optional starting points; project specific ones are
// written the same way.
package mixin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/trigger"
)

// AutoID is an int64 primary key generated by the store.
//
//	id bigint NOT NULL PRIMARY KEY
type AutoID struct {
	ID int64
}

// Fields of the AutoID mixin.
func (AutoID) Fields() []schema.FieldDef {
	return []schema.FieldDef{
		schema.Key("ID", field.Int64(), schema.AutoIncrement()),
	}
}

// UUID is a uuid primary key. Keys assigns a random one before insert
// when it is zero.
type UUID struct {
	ID uuid.UUID
}

// Fields of the UUID mixin.
func (UUID) Fields() []schema.FieldDef {
	return []schema.FieldDef{schema.Key("ID", field.UUID())}
}

func (m *UUID) assignKey() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// ULID is a lexically sortable primary key. Keys assigns one before
// insert when it is zero.
type ULID struct {
	ID ulid.ULID
}

// Fields of the ULID mixin.
func (ULID) Fields() []schema.FieldDef {
	return []schema.FieldDef{schema.Key("ID", field.ULID())}
}

func (m *ULID) assignKey() {
	if m.ID == (ulid.ULID{}) {
		m.ID = ulid.Make()
	}
}

type keyed interface{ assignKey() }

// Keys is a trigger listener filling the zero keys of entities that embed
// UUID or ULID.
type Keys struct{ trigger.Adapter }

// BeforeInsert assigns the key.
func (Keys) BeforeInsert(_ context.Context, ev trigger.Event) {
	if k, ok := ev.Entity.(keyed); ok {
		k.assignKey()
	}
}

// CreateTime is set to the current time on insert.
type CreateTime struct {
	CreatedAt time.Time
}

// Fields of the CreateTime mixin.
func (CreateTime) Fields() []schema.FieldDef {
	return []schema.FieldDef{
		schema.Prop("CreatedAt", field.Timestamp(), schema.NowOnInsert()),
	}
}

// UpdateTime is set to the current time on insert and on every update.
type UpdateTime struct {
	UpdatedAt time.Time
}

// Fields of the UpdateTime mixin.
func (UpdateTime) Fields() []schema.FieldDef {
	return []schema.FieldDef{
		schema.Prop("UpdatedAt", field.Timestamp(), schema.NowOnBoth()),
	}
}

// Time composes CreateTime and UpdateTime.
type Time struct {
	CreateTime
	UpdateTime
}

// Fields of the Time mixin.
func (Time) Fields() []schema.FieldDef {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// SoftDelete marks rows as deleted instead of removing them. Queries are
// expected to filter on deleted_at IS NULL.
type SoftDelete struct {
	DeletedAt *time.Time
}

// Fields of the SoftDelete mixin.
func (SoftDelete) Fields() []schema.FieldDef {
	return []schema.FieldDef{schema.Prop("DeletedAt", field.Timestamp())}
}

// MarkDeleted sets the deletion time. The row changes on the next update.
func (m *SoftDelete) MarkDeleted(at time.Time) { m.DeletedAt = &at }

// Restore clears the deletion time.
func (m *SoftDelete) Restore() { m.DeletedAt = nil }

// Deleted reports whether the entity is marked deleted.
func (m *SoftDelete) Deleted() bool { return m.DeletedAt != nil }

// Tenant scopes rows to a tenant.
type Tenant struct {
	TenantID string
}

// Fields of the Tenant mixin.
func (Tenant) Fields() []schema.FieldDef {
	return []schema.FieldDef{schema.Prop("TenantID", field.StringSize(64))}
}

var (
	_ schema.Mixin     = AutoID{}
	_ schema.Mixin     = UUID{}
	_ schema.Mixin     = ULID{}
	_ schema.Mixin     = Time{}
	_ schema.Mixin     = SoftDelete{}
	_ schema.Mixin     = Tenant{}
	_ trigger.Listener = Keys{}
)
