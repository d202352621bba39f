package leveldbtx

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBTransaction wraps the leveldb transaction. Writes are invisible to
// database readers until Commit.
type LevelDBTransaction struct {
	tx *leveldb.Transaction
}

func (l *LevelDBTransaction) Commit(_ context.Context) error {
	if l.tx == nil {
		return ErrAlreadyCommitted
	}

	err := l.tx.Commit()
	if err != nil {
		return err
	}

	l.tx = nil

	return nil
}

func (l *LevelDBTransaction) Transaction() *leveldb.Transaction {
	return l.tx
}

func (l *LevelDBTransaction) Rollback(_ context.Context) error {
	if l.tx == nil {
		return nil
	}

	l.tx.Discard()
	l.tx = nil

	return nil
}

var _ txmanager.Transaction[*leveldb.Transaction] = (*LevelDBTransaction)(nil)
