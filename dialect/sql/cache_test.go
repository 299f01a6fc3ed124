package sql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/udbq"
	"github.com/syssam/udbq/dialect"
)

func newCacheDB(t *testing.T) (*DB, *CacheDriver, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	drv := NewCacheDriver(OpenDB(dialect.SQLite, conn), udbq.NewMemoryCache(), time.Minute)
	db := NewDB(drv)
	t.Cleanup(func() { _ = db.Close() })
	return db, drv, mock
}

func queryNames(t *testing.T, db *DB, stmt *Statement) []string {
	t.Helper()
	rs, err := db.Query(context.Background(), stmt)
	require.NoError(t, err)
	defer rs.Close()
	var names []string
	for rs.Next() {
		row := rs.Current().(*Row)
		name, ok := row.Get("name")
		require.True(t, ok)
		names = append(names, name.(string))
	}
	require.NoError(t, rs.Err())
	return names
}

func TestCacheDriverHit(t *testing.T) {
	db, _, mock := newCacheDB(t)

	// One database round trip serves both executions.
	mock.ExpectQuery("SELECT id, name FROM users WHERE age > ?").
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "mara").
			AddRow(int64(2), "noor"))

	stmt := Table("users").Select("id", "name").Where("age >", 21)
	assert.Equal(t, []string{"mara", "noor"}, queryNames(t, db, stmt))
	assert.Equal(t, []string{"mara", "noor"}, queryNames(t, db, stmt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDriverDistinctArgs(t *testing.T) {
	db, _, mock := newCacheDB(t)

	// Different bound values are different cache entries.
	mock.ExpectQuery("SELECT id, name FROM users WHERE age > ?").
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "mara"))
	mock.ExpectQuery("SELECT id, name FROM users WHERE age > ?").
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "sol"))

	base := Table("users").Select("id", "name")
	assert.Equal(t, []string{"mara"}, queryNames(t, db, base.Where("age >", 21)))
	assert.Equal(t, []string{"sol"}, queryNames(t, db, base.Where("age >", 40)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDriverFlush(t *testing.T) {
	db, drv, mock := newCacheDB(t)

	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "mara"))
	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "mara").
			AddRow(int64(2), "noor"))

	stmt := Table("users").Select("id", "name")
	assert.Equal(t, []string{"mara"}, queryNames(t, db, stmt))
	require.NoError(t, drv.Flush(context.Background()))
	assert.Equal(t, []string{"mara", "noor"}, queryNames(t, db, stmt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDriverExecPassthrough(t *testing.T) {
	db, _, mock := newCacheDB(t)

	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := db.Do(context.Background(), Table("users").Delete())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = db.Do(context.Background(), Table("users").Delete())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemRowsScanTargets(t *testing.T) {
	db, _, mock := newCacheDB(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, score FROM players").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "score"}).
			AddRow(int64(9), "mara", 1.5))

	stmt := Table("players").Select("id", "name", "score")
	rs, err := db.Query(ctx, stmt)
	require.NoError(t, err)
	require.NoError(t, rs.Close())

	// The second run serves from memory; replayed values keep their types.
	rs, err = db.Query(ctx, stmt)
	require.NoError(t, err)
	defer rs.Close()
	require.True(t, rs.Next())
	row := rs.Current().(*Row)
	id, _ := row.Get("id")
	score, _ := row.Get("score")
	assert.Equal(t, int64(9), id)
	assert.Equal(t, 1.5, score)
	require.NoError(t, rs.Err())
}
