// Package udbq is a minimalist SQL statement builder and executor.
//
// It is deliberately not an ORM: there is no schema, no migrations and no
// type-checked column references. A caller assembles a statement through
// chained builder calls, and the package renders it to parameterized SQL
// text plus an ordered argument list. No value is ever inlined into the
// SQL text as a literal.
//
// # Building statements
//
// Statements are built with the dialect/sql package:
//
//	import "github.com/syssam/udbq/dialect/sql"
//
//	stmt := sql.Table("users").
//	    Select("id", "name").
//	    Where("age >", 21).
//	    OrderBy("name").
//	    Limit(10)
//	query, args, err := stmt.Query()
//
// A statement created by sql.Table is "clean": the first clause-setting
// call (Select, Where, OrderBy, ...) deep-copies it before mutating, so a
// base statement can be handed out and specialized by multiple callers
// without the branches interfering with each other.
//
// # Executing statements
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db := sql.NewDB(drv)
//	defer db.Close()
//
//	id, err := db.Do(ctx, sql.Table("users").Insert(
//	    sql.Set("name", "mara"),
//	    sql.Set("age", 31),
//	))
//
// This package holds the concerns shared by the builder and the executor:
// the error taxonomy and the result cache contract.
package udbq
