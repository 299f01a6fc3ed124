package sql

import (
	"fmt"
	"strings"
)

// Row is a read-only view over one fetched row. It exposes field access by
// column name or positional index and does not permit mutation.
type Row struct {
	columns []string
	index   map[string]int
	values  []any
}

// NewRow returns a row view over the given columns and values. When a
// column name repeats, name lookup resolves to its first position.
func NewRow(columns []string, values []any) *Row {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return &Row{columns: columns, index: index, values: values}
}

// Get returns the value of the named column.
func (r *Row) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// GetIndex returns the value at the given position.
func (r *Row) GetIndex(i int) (any, bool) {
	if i < 0 || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], true
}

// Columns returns the column names in positional order.
func (r *Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.values) }

// String returns a human-readable rendering of the row.
func (r *Row) String() string {
	var b strings.Builder
	b.WriteString("Row(")
	for i, c := range r.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", c, r.values[i])
	}
	b.WriteString(")")
	return b.String()
}

// ResultSet is a lazy, forward-only, single-pass sequence of mapped rows
// backed by a driver cursor. It owns the cursor: the cursor is closed when
// the sequence is exhausted or closed explicitly, and closing twice is a
// no-op. A ResultSet is not restartable and must be consumed by a single
// goroutine.
type ResultSet struct {
	rows    ColumnScanner
	mapper  RowMapper
	columns []string
	current any
	err     error
	done    bool
}

func newResultSet(rows ColumnScanner, mapper RowMapper) *ResultSet {
	if mapper == nil {
		mapper = func(r *Row) any { return r }
	}
	return &ResultSet{rows: rows, mapper: mapper}
}

// Next fetches the next row, returning false when the sequence is
// exhausted or a scan fails. Exhaustion closes the underlying cursor;
// calling Next afterwards keeps returning false.
func (rs *ResultSet) Next() bool {
	if rs.done {
		return false
	}
	if !rs.rows.Next() {
		rs.setErr(rs.rows.Err())
		rs.close()
		return false
	}
	if rs.columns == nil {
		cols, err := rs.rows.Columns()
		if err != nil {
			rs.setErr(err)
			rs.close()
			return false
		}
		rs.columns = cols
	}
	values := make([]any, len(rs.columns))
	dest := make([]any, len(rs.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rs.rows.Scan(dest...); err != nil {
		rs.setErr(err)
		rs.close()
		return false
	}
	rs.current = rs.mapper(NewRow(rs.columns, values))
	return true
}

// Current returns the mapped row fetched by the last successful Next.
func (rs *ResultSet) Current() any { return rs.current }

// Err returns the first error encountered while iterating, if any.
// Plain exhaustion is not an error.
func (rs *ResultSet) Err() error { return rs.err }

// Close releases the underlying cursor. It is idempotent and safe to call
// at any point of the iteration.
func (rs *ResultSet) Close() error {
	return rs.close()
}

func (rs *ResultSet) close() error {
	if rs.done {
		return nil
	}
	rs.done = true
	err := rs.rows.Close()
	rs.setErr(err)
	return err
}

func (rs *ResultSet) setErr(err error) {
	if rs.err == nil && err != nil {
		rs.err = err
	}
}
