package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestNewTxManager(t *testing.T) {
	db, _ := newMockDB(t)

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Success(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		tx := ctx.Value(txKey{})
		assert.NotNil(t, tx)
		assert.IsType(t, &sql.Tx{}, tx)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	txManager := NewTxManager(db)
	called := false
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.EqualError(t, err, "connection refused")
	assert.False(t, called)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	txManager := NewTxManager(db)
	testError := assert.AnError
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return testError
	})

	assert.Equal(t, testError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.EqualError(t, err, "commit failed")
}

func TestWithTx_RollbackError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.EqualError(t, err, "rollback failed")
}

func TestGetTx_WithTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		assert.NotNil(t, querier)
		assert.IsType(t, &sql.Tx{}, querier)
		return nil
	})

	assert.NoError(t, err)
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)

	querier := GetTx(context.Background(), db)

	assert.NotNil(t, querier)
	assert.Equal(t, db, querier)
}

func TestWithSnapshot(t *testing.T) {
	t.Run("Success_QueriesShareTransaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		var count int
		err := txManager.WithSnapshot(context.Background(), func(ctx context.Context) error {
			assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
			return GetTx(ctx, db).QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&count)
		})

		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollsBackOnFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		txManager := NewTxManager(db)
		err := txManager.WithSnapshot(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})

		assert.Equal(t, assert.AnError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTx_NestedJoinsOuterTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(outer context.Context) error {
		return txManager.WithSnapshot(outer, func(inner context.Context) error {
			assert.Same(t, GetTx(outer, db), GetTx(inner, db))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
