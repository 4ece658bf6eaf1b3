// Package rowmap maps Go structs to relational rows and composes SQL
// statements programmatically.
//
// The module is split in two cooperating halves:
//
//   - session: a change-tracking unit of work that derives INSERT, UPDATE,
//     DELETE and SELECT statements from an entity descriptor, remembers the
//     last persisted values of every loaded or inserted entity and only
//     writes the columns that changed.
//   - query: a staged, fluent SELECT builder with joins, predicates,
//     grouping, ordering, pagination, sub-queries and scalar functions,
//     which populates nested entity graphs from flat joined rows.
//
// Entities are described once with the schema package:
//
//	users := schema.New[User]("users").
//	    PK("ID", field.Int(), schema.AutoIncrement()).
//	    Field("Name", field.String(), schema.Column("username")).
//	    Field("InsertTime", field.Timestamp(), schema.NowOnInsert()).
//	    MustBuild()
//
//	reg := schema.NewRegistry()
//	reg.MustRegister(users)
//
//	drv, _ := sql.Open(dialect.SQLite, "file::memory:")
//	sess := session.New(drv, reg)
//
//	u := &User{Name: "saoj"}
//	if err := sess.Insert(ctx, u); err != nil { ... }
//	u.Name = "julia"
//	n, err := sess.Update(ctx, u) // UPDATE users SET username=? WHERE id=?
//
// This package holds the error taxonomy shared by all packages. Every
// failure of the underlying store is wrapped in a *StorageError that keeps
// the driver error reachable through errors.As.
package rowmap
