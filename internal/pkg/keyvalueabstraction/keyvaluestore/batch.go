package keyvaluestore

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
)

// BatchWriter commits a list of operations atomically.
type BatchWriter interface {
	WriteBatch(ctx context.Context, ops []Operation) error
}

// TxBatchWriter commits batches through the transaction manager of the store backend.
type TxBatchWriter[T any] struct {
	store     StoreWithTxManager[T]
	txManager *txmanager.TransactionManager[T]
	settings  txmanager.Settings
}

func NewTxBatchWriter[T any](
	store StoreWithTxManager[T],
	txManager *txmanager.TransactionManager[T],
	settings txmanager.Settings,
) *TxBatchWriter[T] {
	return &TxBatchWriter[T]{
		store:     store,
		txManager: txManager,
		settings:  settings,
	}
}

func (w *TxBatchWriter[T]) WriteBatch(ctx context.Context, ops []Operation) error {
	return w.txManager.Do(ctx, w.settings, func(ctx context.Context, tx txmanager.Transaction[T]) error {
		txStore, err := w.store.WithTx(tx)
		if err != nil {
			return err
		}

		return Apply(ctx, txStore, ops)
	})
}

var _ BatchWriter = (*TxBatchWriter[any])(nil)
