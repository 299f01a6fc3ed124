package sql

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/syssam/udbq"
	"github.com/syssam/udbq/dialect"
)

// session holds what the terminal operations need: an executor to run
// rendered statements on and a logger to report them to. Both DB and DBTx
// embed it.
type session struct {
	ex  dialect.ExecQuerier
	log *slog.Logger
}

// Query executes a SELECT statement and returns its result sequence.
// Cursor ownership transfers to the returned ResultSet.
func (s *session) Query(ctx context.Context, stmt *Statement) (*ResultSet, error) {
	if stmt == nil {
		return nil, udbq.Usagef("Query: nil statement")
	}
	if stmt.op != OpSelect {
		return nil, udbq.Usagef("Query: %s statement, want SELECT", stmt.op)
	}
	query, args, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "query", "sql", query, "args", args)
	var rows Rows
	if err := s.ex.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return newResultSet(rows.ColumnScanner, stmt.mapper), nil
}

// Exec executes an INSERT, INSERT OR REPLACE, UPDATE or DELETE statement
// and returns the driver result.
func (s *session) Exec(ctx context.Context, stmt *Statement) (Result, error) {
	if stmt == nil {
		return nil, udbq.Usagef("Exec: nil statement")
	}
	if stmt.op == OpSelect {
		return nil, udbq.Usagef("Exec: SELECT statement, use Query")
	}
	query, args, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "exec", "sql", query, "args", args)
	var res Result
	if err := s.ex.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Do executes the statement and dispatches on its operation kind:
// INSERT and INSERT OR REPLACE return the new row id (int64), SELECT
// returns a *ResultSet, UPDATE and DELETE return the affected row count
// (int64).
func (s *session) Do(ctx context.Context, stmt *Statement) (any, error) {
	if stmt == nil {
		return nil, udbq.Usagef("Do: nil statement")
	}
	switch stmt.op {
	case OpSelect:
		return s.Query(ctx, stmt)
	case OpInsert, OpReplace:
		res, err := s.Exec(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return res.LastInsertId()
	default:
		res, err := s.Exec(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return res.RowsAffected()
	}
}

// First executes a SELECT statement, fetches at most one row and closes
// the cursor before returning. A zero-row result returns (nil, nil), never
// an error.
func (s *session) First(ctx context.Context, stmt *Statement) (any, error) {
	rs, err := s.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	if !rs.Next() {
		return nil, rs.Err()
	}
	return rs.Current(), nil
}

// DB executes statements on a driver connection. It is the terminal end of
// the builder chain: statements are rendered here and dispatched to the
// underlying dialect.Driver, which may be a plain Driver or one of the
// wrappers (StatsDriver, CacheDriver, DebugDriver).
type DB struct {
	session
	drv    dialect.Driver
	closed atomic.Bool
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger statements are reported to at debug level.
// It defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(db *DB) {
		db.log = log
	}
}

// NewDB returns a DB executing on the given driver.
func NewDB(drv dialect.Driver, opts ...Option) *DB {
	db := &DB{
		session: session{ex: drv, log: slog.Default()},
		drv:     drv,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Dialect returns the dialect name of the underlying driver.
func (d *DB) Dialect() string {
	return d.drv.Dialect()
}

// BeginTx starts a transaction. Statements executed through the returned
// DBTx run inside it.
func (d *DB) BeginTx(ctx context.Context) (*DBTx, error) {
	if d.closed.Load() {
		return nil, udbq.ErrClosed
	}
	tx, err := d.drv.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DBTx{
		session: session{ex: tx, log: d.log},
		tx:      tx,
	}, nil
}

// Close closes the underlying driver connection. Repeated calls are no-ops.
func (d *DB) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.drv.Close()
}

// DBTx executes statements inside one transaction. Either Commit or
// Rollback finishes it; Close rolls back when the transaction is still
// open, so "defer tx.Close()" guarantees release on every path.
type DBTx struct {
	session
	tx   dialect.Tx
	done atomic.Bool
}

// Commit commits the transaction.
func (t *DBTx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return udbq.ErrClosed
	}
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *DBTx) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return udbq.ErrClosed
	}
	return t.tx.Rollback()
}

// Close rolls back the transaction unless it already finished. Repeated
// calls are no-ops.
func (t *DBTx) Close() error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	return t.tx.Rollback()
}
