package inmemorykvstore

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
)

type Store struct {
	s map[string][]byte

	mx sync.RWMutex

	closure chan struct{}
}

type StoreOptions struct {
	persistenceFilePath string
	persistenceInterval time.Duration
}

type StoreOption func(s *StoreOptions) error

func WithPersistencePath(path string) StoreOption {
	return func(s *StoreOptions) error {
		s.persistenceFilePath = path

		return nil
	}
}

func WithPersistenceInterval(interval time.Duration) StoreOption {
	return func(s *StoreOptions) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.persistenceInterval = interval

		return nil
	}
}

func New(opts ...StoreOption) (*Store, error) {
	options := &StoreOptions{
		persistenceFilePath: "",
		persistenceInterval: time.Second * 30,
	}

	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	s := &Store{
		s:       map[string][]byte{},
		closure: make(chan struct{}),
	}

	if len(options.persistenceFilePath) != 0 {
		if err := s.loadFromFileAndRunPersistence(
			options.persistenceFilePath,
			options.persistenceInterval,
		); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (i *Store) Close() error {
	select {
	case <-i.closure:
		return ErrAlreadyClosed
	default:
		close(i.closure)
	}

	return nil
}

func (i *Store) loadFromFileAndRunPersistence(path string, persistenceInterval time.Duration) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open storage error: %w", err)
	}

	gobDecoder := gob.NewDecoder(f)

	i.mx.Lock()
	err = gobDecoder.Decode(&i.s)
	i.mx.Unlock()

	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()

		return fmt.Errorf("decode with gob error: %w", err)
	}

	go func() {
		t := time.NewTicker(persistenceInterval)

		defer t.Stop()
		defer f.Close()

		for {
			select {
			case <-t.C:
				i.saveStore(f)
			case <-i.closure:
				// last flush before exit
				i.saveStore(f)
				return
			}
		}
	}()

	return nil
}

func (i *Store) saveStore(f *os.File) error {
	i.mx.RLock()
	defer i.mx.RUnlock()

	err := f.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file error: %w", err)
	}

	_, err = f.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek error: %w", err)
	}

	encoder := gob.NewEncoder(f)
	err = encoder.Encode(&i.s)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}

	return nil
}

// Delete implements keyvaluestore.Store.
func (i *Store) Delete(_ context.Context, key string) error {
	i.mx.Lock()
	defer i.mx.Unlock()

	delete(i.s, key)

	return nil
}

// Get implements keyvaluestore.Store.
func (i *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	i.mx.RLock()
	defer i.mx.RUnlock()

	val, ok := i.s[key]
	if !ok {
		return nil, false, nil
	}

	return cloneBytes(val), true, nil
}

// Put implements keyvaluestore.Store.
func (i *Store) Put(_ context.Context, key string, value []byte) error {
	i.mx.Lock()
	defer i.mx.Unlock()

	i.s[key] = cloneBytes(value)

	return nil
}

// Range copies the matching entries under the read lock, so the iterator
// sees a consistent snapshot and holds no lock.
func (i *Store) Range(_ context.Context, start, end string) keyvaluestore.Iterator {
	i.mx.RLock()

	keys := make([]string, 0)
	for key := range i.s {
		if key >= start && key < end {
			keys = append(keys, key)
		}
	}

	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		values[key] = cloneBytes(i.s[key])
	}

	i.mx.RUnlock()

	sort.Strings(keys)

	return &sliceIterator{keys: keys, values: values, pos: -1}
}

// WriteBatch applies all operations under a single write lock.
func (i *Store) WriteBatch(batch *Batch) error {
	i.mx.Lock()
	defer i.mx.Unlock()

	for _, op := range batch.ops {
		switch op.Type {
		case keyvaluestore.OperationTypePut:
			i.s[op.Key] = cloneBytes(op.Value)
		case keyvaluestore.OperationTypeDelete:
			delete(i.s, op.Key)
		default:
			return fmt.Errorf("%w: %s", keyvaluestore.ErrUnknownOperation, op.Type)
		}
	}

	return nil
}

// WithTx implements keyvaluestore.StoreWithTxManager.
func (i *Store) WithTx(tx txmanager.Transaction[*Batch]) (keyvaluestore.StoreWithTxManager[*Batch], error) {
	if tx.Transaction() == nil {
		return nil, ErrNoBatch
	}

	return &batchStore{Store: i, batch: tx.Transaction()}, nil
}

// Batch buffers writes until the owning transaction commits.
type Batch struct {
	ops []keyvaluestore.Operation
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Put(key string, value []byte) {
	b.ops = append(b.ops, keyvaluestore.PutOperation(key, cloneBytes(value)))
}

func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, keyvaluestore.DeleteOperation(key))
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Reset() {
	b.ops = nil
}

// batchStore reads from the store and writes into the batch.
type batchStore struct {
	*Store
	batch *Batch
}

func (b *batchStore) Put(_ context.Context, key string, value []byte) error {
	b.batch.Put(key, value)

	return nil
}

func (b *batchStore) Delete(_ context.Context, key string) error {
	b.batch.Delete(key)

	return nil
}

type sliceIterator struct {
	keys   []string
	values map[string][]byte
	pos    int
}

func (s *sliceIterator) Next() bool {
	if s.pos >= len(s.keys) {
		return false
	}

	s.pos++

	return s.pos < len(s.keys)
}

func (s *sliceIterator) Key() string {
	if s.pos < 0 || s.pos >= len(s.keys) {
		return ""
	}

	return s.keys[s.pos]
}

func (s *sliceIterator) Value() []byte {
	return cloneBytes(s.values[s.Key()])
}

func (s *sliceIterator) Error() error {
	return nil
}

func (s *sliceIterator) Release() {
	s.keys = nil
	s.values = nil
	s.pos = 0
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}

var (
	_ keyvaluestore.StoreWithTxManager[*Batch] = (*Store)(nil)
	_ keyvaluestore.StoreWithTxManager[*Batch] = (*batchStore)(nil)
)
