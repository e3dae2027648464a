// Package quarry persists plain Go structs to SQL databases without
// code generation. A model type's relational schema is derived by
// introspection on first use and cached for the life of the process;
// instances are flattened to name-value rows and materialized back, and
// query-parameter structs compile into parameterized WHERE, ORDER BY
// and LIMIT clauses.
//
// The core is split per concern: typeinfo describes a type's shape,
// schema derives and caches tables, codec encodes and decodes rows,
// query compiles filters, and sqlgen renders SQL per dialect. This
// package ties them together behind generic entry points over a Store:
//
//	store := quarry.NewStore(db, sqlgen.SQLite)
//	if err := quarry.CreateTable[User](ctx, store); err != nil { ... }
//	id, err := quarry.Save(ctx, store, User{Name: "Joe", Age: 38})
//	users, err := quarry.FindAll[User](ctx, store, UserQuery{Age: query.AtLeast(21)})
package quarry
