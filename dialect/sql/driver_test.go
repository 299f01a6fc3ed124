package sql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/udbq/dialect"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
		})
	}
}

// TestDialectPrefix tests dialect detection for wrapped driver names.
func TestDialectPrefix(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB("mysql+telemetry", db)
	assert.Equal(t, dialect.MySQL, drv.Dialect())
}

func TestConnExec(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	t.Run("DiscardResult", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 2))
		require.NoError(t, drv.Exec(ctx, "DELETE FROM t", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ScanResult", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO t (x) VALUES (?)").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(7, 1))
		var res Result
		require.NoError(t, drv.Exec(ctx, "INSERT INTO t (x) VALUES (?)", []any{1}, &res))
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BadArgsType", func(t *testing.T) {
		err := drv.Exec(ctx, "DELETE FROM t", "not-a-slice", nil)
		require.Error(t, err)
	})

	t.Run("BadDestType", func(t *testing.T) {
		err := drv.Exec(ctx, "DELETE FROM t", []any{}, "not-a-result")
		require.Error(t, err)
	})
}

func TestConnQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	t.Run("Rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM t").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		var rows Rows
		require.NoError(t, drv.Query(ctx, "SELECT id FROM t", []any{}, &rows))
		require.True(t, rows.Next())
		var id int64
		require.NoError(t, rows.Scan(&id))
		assert.Equal(t, int64(1), id)
		require.NoError(t, rows.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BadDestType", func(t *testing.T) {
		err := drv.Query(ctx, "SELECT 1", []any{}, "not-rows")
		require.Error(t, err)
	})

	t.Run("BadArgsType", func(t *testing.T) {
		var rows Rows
		err := drv.Query(ctx, "SELECT 1", 42, &rows)
		require.Error(t, err)
	})
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE t SET x = ?").
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "UPDATE t SET x = ?", []any{2}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
