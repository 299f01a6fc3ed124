// Package dialect provides the database abstraction the executor runs on.
//
// It defines the driver interfaces and the dialect name constants. The
// dialect/sql sub-package implements them on top of database/sql and holds
// the statement builder.
package dialect

import "context"

// Supported dialects.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier is the interface that wraps the Exec and Query operations.
// Both Driver and Tx implement it.
type ExecQuerier interface {
	// Exec executes a statement that doesn't return rows. For example,
	// INSERT, UPDATE or DELETE. It scans the result into the pointer v;
	// for SQL dialects a *sql.Result, or nil when the result is discarded.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows, typically a SELECT.
	// It scans the result into the pointer v; for SQL dialects a *sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transactional operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
