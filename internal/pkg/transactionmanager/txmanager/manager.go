package txmanager

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoFactory = errors.New("transaction factory is nil")

// Transaction is an interface that represents a transaction.
type Transaction[T any] interface {
	// Commit commits the transaction. It returns an error if the transaction cannot be committed.
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction. It returns an error if the transaction cannot be rolled back.
	Rollback(ctx context.Context) error

	// Transaction returns the underlying transaction.
	Transaction() T
}

// TransactionFactory is a function that creates a new transaction.
type TransactionFactory[T any] func(ctx context.Context, settings Settings) (context.Context, Transaction[T], error)

type TransactionManager[T any] struct {
	txFactory TransactionFactory[T]
}

func New[T any](factory TransactionFactory[T]) *TransactionManager[T] {
	return &TransactionManager[T]{
		txFactory: factory,
	}
}

// Do opens a transaction, calls fn and commits the transaction if fn succeeded.
// The transaction is rolled back when fn or Commit fail.
func (t *TransactionManager[T]) Do(ctx context.Context, settings Settings, fn func(ctx context.Context, tx Transaction[T]) error) error {
	if t.txFactory == nil {
		return ErrNoFactory
	}

	if settings != nil && settings.Timeout() > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, settings.Timeout())
		defer cancel()
	}

	txCtx, tx, err := t.txFactory(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	err = fn(txCtx, tx)
	if err != nil {
		if rbErr := tx.Rollback(txCtx); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (cause: %w)", rbErr, err)
		}

		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		if rbErr := tx.Rollback(txCtx); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (commit: %w)", rbErr, err)
		}

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
