// Package sql provides the statement builder and the executor running on
// SQL based databases.
//
// # Statements
//
// A statement starts from its table sources and grows through chained
// calls:
//
//	stmt := sql.Table("users").
//	    Select("id", "name").
//	    Where("age >", 21).
//	    OrderBy("name").
//	    Limit(10)
//	query, args, err := stmt.Query()
//	// query: SELECT id, name FROM users WHERE age > ? ORDER BY name LIMIT 10
//	// args:  [21]
//
// Every bound value renders as one "?" placeholder; the placeholder order
// in the text always matches the order of the returned argument list.
//
// # Conditions
//
// WHERE and HAVING bodies are Cond values. They grow by textual fragments,
// by (column, operator, value) field triples, or by embedding a whole Cond:
//
//	sql.Table("users").
//	    WhereFields(sql.EQ("active", true), sql.In("role", "admin", "staff")).
//	    Or("banned_at IS NOT NULL")
//
// And/Or chains append without parentheses, so mixed chains follow the
// dialect's raw precedence: "a=? AND b=? OR c=?" groups as
// "(a=? AND b=?) OR c=?". Wrap a sub-condition with AndCond/OrCond to
// group explicitly.
//
// # Copy-on-write
//
// A statement returned by Table is clean. Its first clause-setting call
// (Select, Where, GroupBy, Having, OrderBy, Limit, Offset) deep-copies the
// statement before mutating, so several variants can be derived from one
// base without sharing conditions:
//
//	base := sql.Table("events")
//	recent := base.Where("ts >", lo)      // a copy of base
//	byUser := base.WhereFields(sql.EQ("user_id", 7)) // another copy
//
// Later calls on the same variant mutate it in place.
//
// # Execution
//
// DB renders statements and dispatches them to a dialect.Driver:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	db := sql.NewDB(drv)
//	defer db.Close()
//
//	rs, err := db.Query(ctx, sql.Table("users").Select())
//	defer rs.Close()
//	for rs.Next() {
//	    row := rs.Current().(*sql.Row)
//	    ...
//	}
//
// Drivers compose: NewStatsDriver collects query statistics and slow-query
// hooks, NewDebugDriver logs every statement, NewCacheDriver serves
// repeated SELECTs from a udbq.Cache.
package sql
