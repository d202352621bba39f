package state

import (
	"context"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTipStore(t *testing.T) {
	ctx := context.Background()
	store := lo.Must(inmemorykvstore.New())
	tips := lo.Must(NewTipStore(store))

	_, found, err := tips.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)

	want := Tip{Hash: "bb", PrevHash: "aa", Height: 2}

	op, err := tips.PutOperation(want)
	require.NoError(t, err)
	require.Equal(t, keyvaluestore.OperationTypePut, op.Type)
	require.NoError(t, keyvaluestore.Apply(ctx, store, []keyvaluestore.Operation{op}))

	got, found, err := tips.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, *got)

	require.NoError(t, keyvaluestore.Apply(ctx, store, []keyvaluestore.Operation{tips.DeleteOperation()}))

	_, found, err = tips.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestTipStoreMalformed(t *testing.T) {
	ctx := context.Background()
	store := lo.Must(inmemorykvstore.New())
	require.NoError(t, store.Put(ctx, TipKey, []byte{0xc1}))

	tips := lo.Must(NewTipStore(store))

	_, _, err := tips.Get(ctx)
	require.ErrorIs(t, err, ErrMalformedTip)
}

func TestNewTipStoreNil(t *testing.T) {
	_, err := NewTipStore(nil)
	require.ErrorIs(t, err, ErrNilStore)
}
