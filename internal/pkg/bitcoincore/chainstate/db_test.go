package chainstate

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/binaryutils"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/utxocompression"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const payeeHash = "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"

var testObfuscationKey = []byte{0x27, 0xc7, 0x81, 0x18, 0xb7, 0x31, 0x61, 0x05}

func coinValue(height, amount uint64) []byte {
	var buf bytes.Buffer
	buf.Write(binaryutils.SerializeVLQ(height << 1))
	buf.Write(binaryutils.SerializeVLQ(utxocompression.CompressTxOutAmount(amount)))
	buf.Write(binaryutils.SerializeVLQ(utxocompression.CstPayToPubKeyHash))
	buf.Write(lo.Must(hex.DecodeString(payeeHash)))

	return buf.Bytes()
}

func newTestChainstate(t *testing.T, obfuscate bool) *leveldb.DB {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key := []byte{}
	if obfuscate {
		key = testObfuscationKey
		require.NoError(t, db.Put(obfuscationKeyKey, append([]byte{byte(len(key))}, key...), nil))
	}

	put := func(k, v []byte) {
		if len(key) > 0 {
			v = deobfuscateValue(key, v)
		}

		require.NoError(t, db.Put(k, v, nil))
	}

	put(lo.Must(CoinKey(strings.Repeat("0", 62)+"aa", 0)), coinValue(100, 5000))
	put(lo.Must(CoinKey(strings.Repeat("0", 62)+"aa", 200)), coinValue(101, 7))
	put([]byte{bestBlockKeyPrefix}, binaryutils.ReverseBytesWithCopy(lo.Must(hex.DecodeString(strings.Repeat("0", 62)+"ff"))))

	return db
}

func TestCoinKey(t *testing.T) {
	txID := strings.Repeat("0", 62) + "aa"

	key, err := CoinKey(txID, 200)
	require.NoError(t, err)
	require.Equal(t, "43"+"aa"+strings.Repeat("0", 62)+"8048", hex.EncodeToString(key))

	_, err = CoinKey("abc", 0)
	require.ErrorIs(t, err, ErrInvalidTxID)
}

func TestGetCoin(t *testing.T) {
	for _, obfuscate := range []bool{true, false} {
		chainstate := lo.Must(NewDB(newTestChainstate(t, obfuscate)))
		ctx := context.Background()
		txID := strings.Repeat("0", 62) + "aa"

		coin, err := chainstate.GetCoin(ctx, txID, 200)
		require.NoError(t, err)
		require.Equal(t, txID, coin.GetTxID())
		require.Equal(t, uint64(200), coin.Index())
		require.Equal(t, uint64(101), coin.GetCoin().BlockHeight())
		require.Equal(t, int64(7), coin.GetCoin().GetOut().Value)
		require.Equal(t, "76a914"+payeeHash+"88ac", hex.EncodeToString(coin.GetCoin().GetOut().PkScript))

		_, err = chainstate.GetCoin(ctx, txID, 1)
		require.ErrorIs(t, err, ErrNotFound)

		found, err := chainstate.HasCoin(ctx, txID, 0)
		require.NoError(t, err)
		require.True(t, found)

		found, err = chainstate.HasCoin(ctx, txID, 1)
		require.NoError(t, err)
		require.False(t, found)

		hash, err := chainstate.GetBlockHash(ctx)
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("0", 62)+"ff", hex.EncodeToString(hash))
	}
}

func TestUTXOIterator(t *testing.T) {
	chainstate := lo.Must(NewDB(newTestChainstate(t, true)))
	ctx := context.Background()

	it := chainstate.NewUTXOIterator()
	defer it.Release()

	var values []int64

	for {
		coin, err := it.Next(ctx)
		if errors.Is(err, ErrNoKeysMore) {
			break
		}

		require.NoError(t, err)
		values = append(values, coin.GetCoin().GetOut().Value)
	}

	require.Equal(t, []int64{5000, 7}, values)
}

func TestInvalidObfuscationKey(t *testing.T) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(obfuscationKeyKey, []byte{0x08, 0x01}, nil))

	_, err = NewDB(db)
	require.ErrorIs(t, err, ErrInvalidObfuscationKey)
}
