package inmemorytx

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
)

type InMemoryTransaction struct {
	store *inmemorykvstore.Store
	batch *inmemorykvstore.Batch
}

func NewInMemoryTransaction(store *inmemorykvstore.Store) (*InMemoryTransaction, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	return &InMemoryTransaction{
		store: store,
		batch: inmemorykvstore.NewBatch(),
	}, nil
}

// Commit implements txmanager.Transaction.
func (i *InMemoryTransaction) Commit(_ context.Context) error {
	if i.batch == nil {
		return ErrAlreadyClosed
	}

	err := i.store.WriteBatch(i.batch)
	if err != nil {
		return err
	}

	i.batch = nil

	return nil
}

// Rollback implements txmanager.Transaction.
func (i *InMemoryTransaction) Rollback(_ context.Context) error {
	i.batch = nil

	return nil
}

// Transaction implements txmanager.Transaction.
func (i *InMemoryTransaction) Transaction() *inmemorykvstore.Batch {
	return i.batch
}

var _ txmanager.Transaction[*inmemorykvstore.Batch] = (*InMemoryTransaction)(nil)
