package keyvaluestore

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
)

// Iterator walks keys in ascending byte order. It must be released after use,
// Release is safe to call more than once.
type Iterator interface {
	// Next moves the iterator to the next key. It returns false when there are no keys left or an error occurred.
	Next() bool

	// Key returns the current key.
	Key() string

	// Value returns the current value. The slice is owned by the caller.
	Value() []byte

	// Error returns the error occurred during iteration, if any.
	Error() error

	// Release releases the resources held by the iterator.
	Release()
}

type Reader interface {
	// Get retrieves the value for the given key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Range returns an iterator over the half-open key range [start, end).
	Range(ctx context.Context, start, end string) Iterator
}

type Writer interface {
	// Put sets the key to the given value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete deletes the key from the store. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type Store interface {
	Reader
	Writer
}

type StoreWithTxManager[T any] interface {
	Store

	// WithTx returns a store view whose writes go to the given transaction.
	WithTx(tx txmanager.Transaction[T]) (StoreWithTxManager[T], error)
}
