package sql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/udbq"
	"github.com/syssam/udbq/dialect"
)

// CacheDriver wraps a driver and serves repeated SELECT results from a
// udbq.Cache. A miss runs the query on the wrapped driver, materializes
// the full result, stores its msgpack encoding and serves the rows from
// memory; a hit never touches the database. Exec statements and
// transactions pass through uncached.
//
// Invalidation is the caller's concern: pair writes with Flush, or use a
// TTL short enough for the staleness the application tolerates.
type CacheDriver struct {
	dialect.Driver
	cache udbq.Cache
	ttl   time.Duration
}

// NewCacheDriver wraps a driver with result caching.
func NewCacheDriver(drv dialect.Driver, cache udbq.Cache, ttl time.Duration) *CacheDriver {
	return &CacheDriver{Driver: drv, cache: cache, ttl: ttl}
}

// rowsRecord is the cached form of a materialized result.
type rowsRecord struct {
	Columns []string
	Data    [][]any
}

// Query implements the dialect.Query method with caching.
func (d *CacheDriver) Query(ctx context.Context, query string, args, v any) error {
	vr, okRows := v.(*Rows)
	argv, okArgs := args.([]any)
	if !okRows || !okArgs {
		return d.Driver.Query(ctx, query, args, v)
	}
	key := udbq.QueryKey(query, argv)
	if blob, err := d.cache.Get(ctx, key); err == nil && blob != nil {
		var rec rowsRecord
		if err := msgpack.Unmarshal(blob, &rec); err == nil {
			*vr = Rows{&memRows{columns: rec.Columns, data: rec.Data}}
			return nil
		}
		// Unreadable entry; drop it and fall through to the database.
		_ = d.cache.Delete(ctx, key)
	}
	if err := d.Driver.Query(ctx, query, args, v); err != nil {
		return err
	}
	rec, err := materialize(vr.ColumnScanner)
	if err != nil {
		return err
	}
	if blob, err := msgpack.Marshal(rec); err == nil {
		_ = d.cache.Set(ctx, key, blob, d.ttl)
	}
	*vr = Rows{&memRows{columns: rec.Columns, data: rec.Data}}
	return nil
}

// Flush removes every cached query result.
func (d *CacheDriver) Flush(ctx context.Context) error {
	return d.cache.DeletePrefix(ctx, "q:")
}

// materialize drains and closes the cursor, returning its full contents.
func materialize(rows ColumnScanner) (*rowsRecord, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rec := &rowsRecord{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		rec.Data = append(rec.Data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// memRows is an in-memory ColumnScanner over materialized rows.
type memRows struct {
	columns []string
	data    [][]any
	pos     int
	closed  bool
}

func (m *memRows) Next() bool {
	if m.closed || m.pos >= len(m.data) {
		return false
	}
	m.pos++
	return true
}

func (m *memRows) Scan(dest ...any) error {
	if m.closed {
		return fmt.Errorf("dialect/sql: scan on closed rows")
	}
	if m.pos == 0 || m.pos > len(m.data) {
		return fmt.Errorf("dialect/sql: scan without next")
	}
	row := m.data[m.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("dialect/sql: expected %d scan destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		if err := scanValue(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (m *memRows) Columns() ([]string, error) {
	if m.closed {
		return nil, fmt.Errorf("dialect/sql: columns on closed rows")
	}
	return m.columns, nil
}

// ColumnTypes are not preserved across the cache; callers scanning cached
// rows rely on the decoded value types instead.
func (m *memRows) ColumnTypes() ([]*sql.ColumnType, error) { return nil, nil }

func (m *memRows) Err() error          { return nil }
func (m *memRows) NextResultSet() bool { return false }
func (m *memRows) Close() error        { m.closed = true; return nil }

// scanValue assigns a cached value to one scan destination.
func scanValue(dest, src any) error {
	switch d := dest.(type) {
	case *any:
		*d = src
	case *string:
		switch s := src.(type) {
		case string:
			*d = s
		case []byte:
			*d = string(s)
		default:
			return fmt.Errorf("dialect/sql: cannot scan %T into *string", src)
		}
	case *[]byte:
		switch s := src.(type) {
		case []byte:
			*d = s
		case string:
			*d = []byte(s)
		default:
			return fmt.Errorf("dialect/sql: cannot scan %T into *[]byte", src)
		}
	case *int64:
		switch s := src.(type) {
		case int64:
			*d = s
		case int:
			*d = int64(s)
		case int8:
			*d = int64(s)
		case int16:
			*d = int64(s)
		case int32:
			*d = int64(s)
		case uint64:
			*d = int64(s)
		default:
			return fmt.Errorf("dialect/sql: cannot scan %T into *int64", src)
		}
	case *float64:
		switch s := src.(type) {
		case float64:
			*d = s
		case float32:
			*d = float64(s)
		default:
			return fmt.Errorf("dialect/sql: cannot scan %T into *float64", src)
		}
	case *bool:
		s, ok := src.(bool)
		if !ok {
			return fmt.Errorf("dialect/sql: cannot scan %T into *bool", src)
		}
		*d = s
	case *time.Time:
		s, ok := src.(time.Time)
		if !ok {
			return fmt.Errorf("dialect/sql: cannot scan %T into *time.Time", src)
		}
		*d = s
	default:
		return fmt.Errorf("dialect/sql: unsupported scan destination %T", dest)
	}
	return nil
}

var _ dialect.Driver = (*CacheDriver)(nil)
var _ ColumnScanner = (*memRows)(nil)
