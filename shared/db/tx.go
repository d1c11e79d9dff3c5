package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor is the subset of *sql.DB / *sql.Tx the stores need, so queries run
// against whichever of the two the context dictates.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// WithTx returns a new context carrying the transaction.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx retrieves the transaction from the context if one is attached.
func GetTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// GetExecutor returns the context's transaction when present, the base
// connection otherwise.
func GetExecutor(ctx context.Context, base *sql.DB) Executor {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return base
}

// RunInTransaction executes fn inside a transaction. A transaction already
// attached to the context is reused and left for the outer caller to commit
// or roll back; otherwise a new one is opened and committed when fn returns
// nil, rolled back when it doesn't.
func RunInTransaction(ctx context.Context, base *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	tx, err := base.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
