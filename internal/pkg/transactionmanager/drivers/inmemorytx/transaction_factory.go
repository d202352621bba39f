package inmemorytx

import (
	"context"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
)

func NewInMemoryTransactionFactory(store *inmemorykvstore.Store) txmanager.TransactionFactory[*inmemorykvstore.Batch] {
	return func(ctx context.Context, _ txmanager.Settings) (context.Context, txmanager.Transaction[*inmemorykvstore.Batch], error) {
		tx, err := NewInMemoryTransaction(store)
		if err != nil {
			return ctx, nil, fmt.Errorf("create tx error: %w", err)
		}

		return ctx, tx, nil
	}
}
