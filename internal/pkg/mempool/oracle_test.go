package mempool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	payeeAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	payeeHash    = "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"
	otherHash    = "89abcdefabbaabbaabbaabbaabbaabbaabbaabba"
)

type mainnet struct{}

func (mainnet) GetDecimals() int { return 8 }

func (mainnet) GetParams() *chaincfg.Params { return &chaincfg.MainNetParams }

type fakeClient struct {
	mx      sync.Mutex
	txIDs   []string
	txs     map[string]*blockchain.Transaction
	fetches map[string]int
	err     error
}

func (f *fakeClient) GetMempoolTxIDs(context.Context) ([]string, error) {
	return f.txIDs, nil
}

func (f *fakeClient) GetTransaction(_ context.Context, txID string) (*blockchain.Transaction, error) {
	f.mx.Lock()
	defer f.mx.Unlock()

	f.fetches[txID]++

	if f.err != nil {
		return nil, f.err
	}

	tx, ok := f.txs[txID]
	if !ok {
		return nil, restclient.ErrNotFound
	}

	return tx, nil
}

func txID(i int) string {
	return fmt.Sprintf("%064x", i)
}

func out(sats int64, hash string) *blockchain.TransactionOutput {
	return &blockchain.TransactionOutput{
		Value:        blockchain.NewAmountValue(decimal.New(sats, -8)),
		ScriptPubKey: &blockchain.ScriptPubKey{HEX: "76a914" + hash + "88ac"},
	}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		txIDs: []string{txID(3), txID(2), txID(1)},
		txs: map[string]*blockchain.Transaction{
			txID(1): {ID: txID(1), VOut: []*blockchain.TransactionOutput{out(10, otherHash), out(20, payeeHash)}},
			txID(2): {ID: txID(2), VOut: []*blockchain.TransactionOutput{out(30, payeeHash)}},
			// txID(3) left the mempool
		},
		fetches: map[string]int{},
	}
}

func TestGetMempoolOutputs(t *testing.T) {
	client := newFakeClient()
	oracle := lo.Must(New(client, mainnet{}, WithFetchConcurrency(2)))
	defer oracle.Close()

	outputs, err := oracle.GetMempoolOutputs(context.Background(), payeeAddress)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	require.Equal(t, txID(1), outputs[0].TxID)
	require.Equal(t, uint32(1), outputs[0].OutputIndex)
	require.Equal(t, uint64(20), outputs[0].Satoshis)
	require.Equal(t, addrindex.MempoolHeight, outputs[0].BlockHeight)
	require.Equal(t, payeeAddress, outputs[0].Address)

	require.Equal(t, txID(2), outputs[1].TxID)
	require.Equal(t, uint64(30), outputs[1].Satoshis)
	require.Equal(t, []string{txID(3), txID(2), txID(1)}, client.txIDs)

	_, err = oracle.GetMempoolOutputs(context.Background(), payeeAddress)
	require.NoError(t, err)

	// cached transactions are not downloaded again
	require.Equal(t, 1, client.fetches[txID(1)])
	require.Equal(t, 1, client.fetches[txID(2)])
	require.Equal(t, 2, client.fetches[txID(3)])
}

func TestGetMempoolOutputsCacheExpires(t *testing.T) {
	client := newFakeClient()
	oracle := lo.Must(New(client, mainnet{}, WithCache(time.Millisecond, 0)))
	defer oracle.Close()

	_, err := oracle.GetMempoolOutputs(context.Background(), payeeAddress)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = oracle.GetMempoolOutputs(context.Background(), payeeAddress)
	require.NoError(t, err)
	require.Equal(t, 2, client.fetches[txID(1)])
}

func TestGetMempoolOutputsErrors(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("connection refused")

	oracle := lo.Must(New(client, mainnet{}))
	defer oracle.Close()

	_, err := oracle.GetMempoolOutputs(context.Background(), payeeAddress)
	require.ErrorIs(t, err, client.err)

	_, err = oracle.GetMempoolOutputs(context.Background(), "not-an-address")
	require.ErrorIs(t, err, addrindex.ErrAddressDecode)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, mainnet{})
	require.ErrorIs(t, err, ErrNilClient)

	_, err = New(newFakeClient(), nil)
	require.ErrorIs(t, err, ErrNilBitcoinConfig)

	_, err = New(newFakeClient(), mainnet{}, WithFetchConcurrency(0))
	require.ErrorIs(t, err, ErrInvalidConcurrency)

	_, err = New(newFakeClient(), mainnet{}, WithCache(0, 0))
	require.ErrorIs(t, err, ErrInvalidCacheTTL)
}
