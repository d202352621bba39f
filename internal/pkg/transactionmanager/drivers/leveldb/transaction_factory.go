package leveldbtx

import (
	"context"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/syndtr/goleveldb/leveldb"
)

type LevelDBTransactionOpener interface {
	// OpenTransaction opens the leveldb transaction
	OpenTransaction() (*leveldb.Transaction, error)
}

// NewLevelDBTransactionFactory returns a factory for the leveldb transactions.
// Settings are ignored: leveldb transactions lock the whole database.
func NewLevelDBTransactionFactory(db LevelDBTransactionOpener) txmanager.TransactionFactory[*leveldb.Transaction] {
	return func(ctx context.Context, _ txmanager.Settings) (context.Context, txmanager.Transaction[*leveldb.Transaction], error) {
		tx, err := db.OpenTransaction()
		if err != nil {
			return ctx, nil, fmt.Errorf("failed to open transaction: %w", err)
		}

		return ctx, &LevelDBTransaction{
			tx: tx,
		}, nil
	}
}
