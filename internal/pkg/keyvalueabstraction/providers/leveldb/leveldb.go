package leveldbkvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is implemented by both *leveldb.DB and *leveldb.Transaction.
type LevelDB interface {
	// Delete deletes the value for the given key.
	Delete(key []byte, wo *opt.WriteOptions) error

	// Get gets the value for the given key. It returns leveldb.ErrNotFound if the key does not exist.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)

	// NewIterator returns an iterator for the latest state of the database. The iterator is not safe for concurrent use.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator

	// Put sets the value for the given key. It overwrites any previous value for that key.
	Put(key []byte, value []byte, wo *opt.WriteOptions) error
}

type LevelDBStore struct {
	db LevelDB
}

func NewLevelDBStore(db LevelDB) (*LevelDBStore, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	return &LevelDBStore{
		db: db,
	}, nil
}

func (l *LevelDBStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, err := l.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to get the key: %w", err)
	}

	return val, true, nil
}

func (l *LevelDBStore) Put(_ context.Context, key string, value []byte) error {
	err := l.db.Put([]byte(key), value, nil)
	if err != nil {
		return fmt.Errorf("failed to put the key: %w", err)
	}

	return nil
}

func (l *LevelDBStore) Delete(_ context.Context, key string) error {
	err := l.db.Delete([]byte(key), nil)
	if err != nil {
		return fmt.Errorf("failed to delete the key: %w", err)
	}

	return nil
}

// Range iterates over an implicit leveldb snapshot taken when the iterator is created.
func (l *LevelDBStore) Range(_ context.Context, start, end string) keyvaluestore.Iterator {
	return &rangeIterator{
		it: l.db.NewIterator(&util.Range{
			Start: []byte(start),
			Limit: []byte(end),
		}, nil),
	}
}

func (l *LevelDBStore) WithTx(tx txmanager.Transaction[*leveldb.Transaction]) (keyvaluestore.StoreWithTxManager[*leveldb.Transaction], error) {
	if tx.Transaction() == nil {
		return nil, ErrTxClosed
	}

	return &LevelDBStore{
		db: tx.Transaction(),
	}, nil
}

type rangeIterator struct {
	it iterator.Iterator
}

func (r *rangeIterator) Next() bool {
	return r.it.Next()
}

func (r *rangeIterator) Key() string {
	return string(r.it.Key())
}

// Value copies the value: leveldb reuses the buffer on Next.
func (r *rangeIterator) Value() []byte {
	v := r.it.Value()
	out := make([]byte, len(v))
	copy(out, v)

	return out
}

func (r *rangeIterator) Error() error {
	return r.it.Error()
}

func (r *rangeIterator) Release() {
	r.it.Release()
}

var _ keyvaluestore.StoreWithTxManager[*leveldb.Transaction] = (*LevelDBStore)(nil)
