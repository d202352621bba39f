package leveldbkvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/drivers/leveldb"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func newTestStore(t *testing.T) (*leveldb.DB, *LevelDBStore) {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	store, err := NewLevelDBStore(db)
	require.NoError(t, err)

	return db, store
}

func collect(t *testing.T, it keyvaluestore.Iterator) []string {
	t.Helper()
	defer it.Release()

	keys := []string{}
	for it.Next() {
		keys = append(keys, it.Key()+"="+string(it.Value()))
	}

	require.NoError(t, it.Error())

	return keys
}

func TestLevelDBStore_Range(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	for _, k := range []string{"outs-ab-2", "outs-ab-1", "outs-abc-1", "outs-b-1", "outs-a-9"} {
		require.NoError(t, store.Put(ctx, k, []byte(k[len(k)-1:])))
	}

	require.Equal(t, []string{"outs-ab-1=1", "outs-ab-2=2"}, collect(t, store.Range(ctx, "outs-ab-", "outs-ab-~")))
	require.Empty(t, collect(t, store.Range(ctx, "outs-c", "outs-c~")))
}

func TestLevelDBStore_GetDelete(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Put(ctx, "k", []byte("v")))

	v, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), v)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestLevelDBStore_WriteBatch(t *testing.T) {
	ctx := context.Background()
	db, store := newTestStore(t)

	writer := keyvaluestore.NewTxBatchWriter[*leveldb.Transaction](
		store,
		txmanager.New(leveldbtx.NewLevelDBTransactionFactory(db)),
		nil,
	)

	require.NoError(t, writer.WriteBatch(ctx, []keyvaluestore.Operation{
		keyvaluestore.PutOperation("a", []byte("1")),
		keyvaluestore.PutOperation("b", []byte("2")),
		keyvaluestore.DeleteOperation("a"),
	}))

	require.Equal(t, []string{"b=2"}, collect(t, store.Range(ctx, "", "~")))

	err := writer.WriteBatch(ctx, []keyvaluestore.Operation{
		keyvaluestore.PutOperation("c", []byte("3")),
		{Type: 99, Key: "bad"},
	})
	require.True(t, errors.Is(err, keyvaluestore.ErrUnknownOperation))

	require.Equal(t, []string{"b=2"}, collect(t, store.Range(ctx, "", "~")))
}
