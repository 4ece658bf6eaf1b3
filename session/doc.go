// Package session implements a change-tracking unit of work over a
// dialect.Driver.
//
// A Session derives INSERT, UPDATE, DELETE and SELECT statements from the
// descriptor of an entity. Entities loaded or inserted through the session
// are attached: the session keeps a snapshot of their column values keyed
// by the entity pointer, and Update writes only the properties whose value
// differs from the snapshot.
//
//	u := &User{ID: 1}
//	if found, err := sess.Load(ctx, u); err != nil || !found {
//	    ...
//	}
//	u.Age++
//	n, err := sess.Update(ctx, u) // UPDATE users SET age=? WHERE id=?
//
// # Prototypes
//
// LoadList, CountList, LoadUnique and DeleteAll take a prototype entity:
// every set property becomes an equality condition. Booleans count as set
// only when true and numbers only when non-zero.
//
// # Dialects
//
// The Dialect of a session selects the current time token, pagination,
// generated key retrieval and column types. It defaults to the dialect
// named by the driver. The built-in dialects are structs that a custom
// dialect may embed.
//
// # Triggers
//
// Session listeners registered with AddTrigger run before the listeners
// of the entity descriptor, around every insert, update and delete.
package session
