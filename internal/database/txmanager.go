package database

import (
	"context"
	"database/sql"
)

type txKey struct{}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs callbacks inside a transaction carried by the context.
// Repositories pick the transaction up through GetTx.
type TxManager interface {
	// WithTx runs fn in a read-write transaction with the driver's default isolation.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// WithSnapshot runs fn in a read-only repeatable-read transaction, so every query fn
	// issues sees the same rows even while other sessions keep inserting.
	WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager bound to db.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

func (m *sqlTxManager) WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *sqlTxManager) run(
	ctx context.Context,
	opts *sql.TxOptions,
	fn func(ctx context.Context) error,
) error {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// GetTx returns the transaction stored in ctx, or db when there is none.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
