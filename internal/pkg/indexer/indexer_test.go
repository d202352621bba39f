package indexer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoinconfig"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/scanner"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/state"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexevents"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/drivers/inmemorytx"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	payeeAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	payeeHash    = "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"
)

func hashOf(i int) blockchain.Hash {
	return blockchain.MustHashFromHEX(fmt.Sprintf("%064x", i))
}

type fakeFetcher struct {
	blocks map[string]*blockchain.Block
	active map[int64]blockchain.Hash
}

func newFakeFetcher(blocks ...*blockchain.Block) *fakeFetcher {
	f := &fakeFetcher{blocks: map[string]*blockchain.Block{}, active: map[int64]blockchain.Hash{}}
	for _, b := range blocks {
		f.add(b)
	}

	return f
}

func (f *fakeFetcher) add(b *blockchain.Block) {
	f.blocks[b.GetHash().String()] = b
	f.active[b.GetHeight()] = b.GetHash()
}

func (f *fakeFetcher) GetBlock(_ context.Context, hash blockchain.Hash) (*blockchain.Block, error) {
	b, ok := f.blocks[hash.String()]
	if !ok {
		return nil, restclient.ErrNotFound
	}

	return b, nil
}

func (f *fakeFetcher) GetBlockHash(_ context.Context, height int64) (blockchain.Hash, error) {
	h, ok := f.active[height]
	if !ok {
		return nil, restclient.ErrNotFound
	}

	return h, nil
}

// block builds a block with one transaction paying value to payeeHash.
func block(id int, prev int, height int64, value int64) *blockchain.Block {
	b := &blockchain.Block{
		BlockHeader: blockchain.BlockHeader{
			Hash:   hashOf(id),
			Height: height,
			Time:   1700000000 + height*600,
		},
		Transactions: []*blockchain.Transaction{{
			ID: fmt.Sprintf("%064x", 1000+id),
			VOut: []*blockchain.TransactionOutput{{
				N:            0,
				Value:        blockchain.NewAmountValue(decimal.New(value, -8)),
				ScriptPubKey: &blockchain.ScriptPubKey{HEX: "76a914" + payeeHash + "88ac"},
			}},
		}},
	}

	if prev > 0 {
		b.PrevBlockHash = hashOf(prev)
	}

	return b
}

type unspentOracle struct{}

func (unspentOracle) IsSpent(context.Context, string, uint32, bool) (bool, error) {
	return false, nil
}

type recordingPublisher struct {
	events []indexevents.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e indexevents.Event) error {
	r.events = append(r.events, e)

	return r.err
}

type failingBatch struct{}

func (failingBatch) WriteBatch(context.Context, []keyvaluestore.Operation) error {
	return errors.New("disk full")
}

type testEnv struct {
	store     *inmemorykvstore.Store
	indexer   *Indexer
	addresses *addrindex.Module
	fetcher   *fakeFetcher
	publisher *recordingPublisher
	metrics   *Metrics
}

func newTestEnv(t *testing.T, fetcher *fakeFetcher, opts ...IndexerOption) *testEnv {
	t.Helper()

	store := lo.Must(inmemorykvstore.New())
	batch := keyvaluestore.NewTxBatchWriter[*inmemorykvstore.Batch](
		store,
		txmanager.New(inmemorytx.NewInMemoryTransactionFactory(store)),
		txmanager.NewSettings(txmanager.WithTimeout(time.Second)),
	)

	publisher := &recordingPublisher{}
	metrics := lo.Must(NewMetrics(prometheus.NewRegistry()))

	ix, err := New(store, batch, fetcher, append([]IndexerOption{WithPublisher(publisher), WithMetrics(metrics)}, opts...)...)
	require.NoError(t, err)

	btcConfig := lo.Must(bitcoinconfig.NewFromChainName("main", 8, 10*time.Minute))
	addresses := lo.Must(addrindex.New(store, btcConfig, unspentOracle{}))
	require.NoError(t, ix.Register(addresses))

	return &testEnv{
		store:     store,
		indexer:   ix,
		addresses: addresses,
		fetcher:   fetcher,
		publisher: publisher,
		metrics:   metrics,
	}
}

func (e *testEnv) keys(t *testing.T) []string {
	t.Helper()

	it := e.store.Range(context.Background(), "", "~")
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, it.Key())
	}

	require.NoError(t, it.Error())

	return keys
}

func (e *testEnv) balance(t *testing.T) uint64 {
	t.Helper()

	balance, err := e.addresses.GetBalance(context.Background(), payeeAddress, false)
	if errors.Is(err, addrindex.ErrNoOutputsForAddress) {
		return 0
	}

	require.NoError(t, err)

	return balance
}

func TestConnectAndDisconnect(t *testing.T) {
	b0, b1 := block(1, 0, 0, 50), block(2, 1, 1, 25)
	env := newTestEnv(t, newFakeFetcher(b0, b1))
	ctx := context.Background()

	require.NoError(t, env.indexer.ConnectBlock(ctx, b0))
	require.NoError(t, env.indexer.ConnectBlock(ctx, b1))
	require.Equal(t, uint64(75), env.balance(t))

	tip, found, err := env.indexer.Tip(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, state.Tip{Hash: hashOf(2).String(), PrevHash: hashOf(1).String(), Height: 1}, *tip)
	require.Equal(t, float64(1), testutil.ToFloat64(env.metrics.tipHeight))
	require.Equal(t, float64(2), testutil.ToFloat64(env.metrics.blocksConnected))
	require.Equal(t, float64(2), testutil.ToFloat64(env.metrics.operations.WithLabelValues(addrindex.ModuleName, "put")))

	require.NoError(t, env.indexer.DisconnectTip(ctx))
	require.Equal(t, uint64(50), env.balance(t))

	tip, found, err = env.indexer.Tip(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, state.Tip{Hash: hashOf(1).String(), PrevHash: "", Height: 0}, *tip)

	require.NoError(t, env.indexer.DisconnectTip(ctx))
	require.Empty(t, env.keys(t))
	require.ErrorIs(t, env.indexer.DisconnectTip(ctx), ErrEmptyIndex)

	require.Equal(t, float64(2), testutil.ToFloat64(env.metrics.blocksDisconnected))

	types := lo.Map(env.publisher.events, func(e indexevents.Event, _ int) indexevents.EventType { return e.Type })
	require.Equal(t, []indexevents.EventType{
		indexevents.EventTypeConnected,
		indexevents.EventTypeConnected,
		indexevents.EventTypeDisconnected,
		indexevents.EventTypeDisconnected,
	}, types)
}

func TestConnectRejectsWithoutWriting(t *testing.T) {
	b0, b1 := block(1, 0, 0, 50), block(2, 1, 1, 25)
	fork := block(3, 9, 1, 7)
	env := newTestEnv(t, newFakeFetcher(b0, b1))
	ctx := context.Background()

	require.ErrorIs(t, env.indexer.ConnectBlock(ctx, b1), ErrNextBlockTooFar)
	require.Empty(t, env.keys(t))

	require.NoError(t, env.indexer.ConnectBlock(ctx, b0))
	before := env.keys(t)

	require.ErrorIs(t, env.indexer.ConnectBlock(ctx, b0), ErrBlockAlreadyIndexed)
	require.ErrorIs(t, env.indexer.ConnectBlock(ctx, fork), ErrChainMismatch)
	require.Equal(t, before, env.keys(t))
	require.Len(t, env.publisher.events, 1)
}

func TestConnectFailedCommitKeepsTip(t *testing.T) {
	b0 := block(1, 0, 0, 50)
	fetcher := newFakeFetcher(b0)
	store := lo.Must(inmemorykvstore.New())

	ix, err := New(store, failingBatch{}, fetcher)
	require.NoError(t, err)

	require.Error(t, ix.ConnectBlock(context.Background(), b0))

	_, found, err := ix.Tip(context.Background())
	require.NoError(t, err)
	require.False(t, found)
}

func TestHandleBlockReorg(t *testing.T) {
	b0, b1, b2 := block(1, 0, 0, 50), block(2, 1, 1, 25), block(3, 2, 2, 10)
	fetcher := newFakeFetcher(b0, b1, b2)
	env := newTestEnv(t, fetcher)
	ctx := context.Background()

	for _, b := range []*blockchain.Block{b0, b1, b2} {
		require.NoError(t, env.indexer.HandleBlock(ctx, b))
	}

	// already indexed tip is skipped
	require.NoError(t, env.indexer.HandleBlock(ctx, b2))

	// b2' replaces b2 at height 2
	b2r := block(4, 2, 2, 1)
	fetcher.add(b2r)

	err := env.indexer.HandleBlock(ctx, b2r)
	require.ErrorIs(t, err, scanner.ErrRestart)

	from, err := env.indexer.GetLastScannedBlockHash(ctx)
	require.NoError(t, err)
	require.Equal(t, hashOf(2).String(), from)
	require.Equal(t, uint64(75), env.balance(t))

	require.NoError(t, env.indexer.HandleBlock(ctx, b1))
	require.NoError(t, env.indexer.HandleBlock(ctx, b2r))
	require.Equal(t, uint64(76), env.balance(t))
}

func TestStartHeight(t *testing.T) {
	b5, b6 := block(5, 4, 5, 1), block(6, 5, 6, 2)
	env := newTestEnv(t, newFakeFetcher(b5, b6), WithStartHeight(5))
	ctx := context.Background()

	from, err := env.indexer.GetLastScannedBlockHash(ctx)
	require.NoError(t, err)
	require.Equal(t, hashOf(5).String(), from)

	require.NoError(t, env.indexer.ConnectBlock(ctx, b5))
	require.NoError(t, env.indexer.ConnectBlock(ctx, b6))
	require.NoError(t, env.indexer.DisconnectTip(ctx))
	require.NoError(t, env.indexer.DisconnectTip(ctx))
	require.Empty(t, env.keys(t))

	err = env.indexer.HandleBlock(ctx, b6)
	require.ErrorIs(t, err, scanner.ErrRestart)
}

func TestPublishErrorDoesNotFailConnect(t *testing.T) {
	b0 := block(1, 0, 0, 50)
	env := newTestEnv(t, newFakeFetcher(b0))
	env.publisher.err = errors.New("broker down")

	require.NoError(t, env.indexer.ConnectBlock(context.Background(), b0))
	require.Equal(t, uint64(50), env.balance(t))
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t, newFakeFetcher())

	require.ErrorIs(t, env.indexer.Register(env.addresses), ErrModuleExists)
}

func TestNewValidation(t *testing.T) {
	store := lo.Must(inmemorykvstore.New())

	_, err := New(nil, failingBatch{}, newFakeFetcher())
	require.ErrorIs(t, err, ErrNilStore)

	_, err = New(store, nil, newFakeFetcher())
	require.ErrorIs(t, err, ErrNilBatchWriter)

	_, err = New(store, failingBatch{}, nil)
	require.ErrorIs(t, err, ErrNilBlockFetcher)

	_, err = New(store, failingBatch{}, newFakeFetcher(), WithStartHeight(-1))
	require.ErrorIs(t, err, ErrInvalidStartHeight)
}
