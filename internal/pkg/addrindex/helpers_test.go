package addrindex

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	// HASH160 of the genesis coinbase public key
	genesisPubKeyHash = "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"
	genesisPubKey     = "04678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5f"

	otherHash = "89abcdefabbaabbaabbaabbaabbaabbaabbaabba"
)

type testBitcoinConfig struct{}

func (testBitcoinConfig) GetDecimals() int { return 8 }

func (testBitcoinConfig) GetParams() *chaincfg.Params { return &chaincfg.MainNetParams }

func buildP2PKHScript(hash string) string {
	return "76a914" + hash + "88ac"
}

func buildP2SHScript(hash string) string {
	return "a914" + hash + "87"
}

func buildP2PKScript(pubKey string) string {
	return "41" + pubKey + "ac"
}

func p2pkhAddress(t *testing.T, hash string) string {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(lo.Must(hex.DecodeString(hash)), &chaincfg.MainNetParams)
	require.NoError(t, err)

	return addr.EncodeAddress()
}

func p2shAddress(t *testing.T, hash string) string {
	t.Helper()

	addr, err := btcutil.NewAddressScriptHashFromHash(lo.Must(hex.DecodeString(hash)), &chaincfg.MainNetParams)
	require.NoError(t, err)

	return addr.EncodeAddress()
}

func txOut(satoshis int64, scriptHex string) *blockchain.TransactionOutput {
	return &blockchain.TransactionOutput{
		Value:        blockchain.NewAmountValue(decimal.New(satoshis, -8)),
		ScriptPubKey: &blockchain.ScriptPubKey{HEX: scriptHex},
	}
}

func txID(n int) string {
	return fmt.Sprintf("%064x", n)
}

func newBlock(height int64, timeSeconds int64, txs ...*blockchain.Transaction) *blockchain.Block {
	return &blockchain.Block{
		BlockHeader: blockchain.BlockHeader{
			Hash:   blockchain.MustHashFromHEX(fmt.Sprintf("%064x", height+1000)),
			Height: height,
			Time:   timeSeconds,
		},
		Transactions: txs,
	}
}

type fakeSpentOracle struct {
	mx    sync.Mutex
	spent map[string]bool
	err   error

	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
	mempool  []bool

	// delay keeps each check in flight long enough to overlap
	delay time.Duration
}

func newFakeSpentOracle() *fakeSpentOracle {
	return &fakeSpentOracle{spent: map[string]bool{}}
}

func (f *fakeSpentOracle) markSpent(txID string, index uint32) {
	f.mx.Lock()
	defer f.mx.Unlock()

	f.spent[fmt.Sprintf("%s:%d", txID, index)] = true
}

func (f *fakeSpentOracle) IsSpent(_ context.Context, txID string, outputIndex uint32, includeMempool bool) (bool, error) {
	f.calls.Add(1)

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mx.Lock()
	defer f.mx.Unlock()

	f.mempool = append(f.mempool, includeMempool)

	if f.err != nil {
		return false, f.err
	}

	return f.spent[fmt.Sprintf("%s:%d", txID, outputIndex)], nil
}

type fakeMempool struct {
	outputs map[string][]*Output
	err     error
}

func (f *fakeMempool) GetMempoolOutputs(_ context.Context, address string) ([]*Output, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.outputs[address], nil
}

func newTestModule(t *testing.T, opts ...ModuleOption) (*Module, *inmemorykvstore.Store, *fakeSpentOracle) {
	t.Helper()

	store, err := inmemorykvstore.New()
	require.NoError(t, err)

	oracle := newFakeSpentOracle()

	m, err := New(store, testBitcoinConfig{}, oracle, opts...)
	require.NoError(t, err)

	return m, store, oracle
}

func indexBlock(t *testing.T, m *Module, store keyvaluestore.Writer, block *blockchain.Block, addOutput bool) []keyvaluestore.Operation {
	t.Helper()

	ops, err := m.BlockHandler(context.Background(), block, addOutput)
	require.NoError(t, err)
	require.NoError(t, keyvaluestore.Apply(context.Background(), store, ops))

	return ops
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
