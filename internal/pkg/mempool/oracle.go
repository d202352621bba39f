package mempool

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Client interface {
	GetMempoolTxIDs(ctx context.Context) ([]string, error)
	GetTransaction(ctx context.Context, txID string) (*blockchain.Transaction, error)
}

// Oracle finds unconfirmed outputs paying to an address. Mempool transactions
// never change, so they are cached by txid and only new ones are downloaded.
type Oracle struct {
	client    Client
	btcConfig addrindex.BitcoinConfig
	txs       *ttlcache.Cache[string, *blockchain.Transaction]

	fetchConcurrency int
	logger           *zerolog.Logger
}

func New(client Client, btcConfig addrindex.BitcoinConfig, opts ...OracleOption) (*Oracle, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	if btcConfig == nil {
		return nil, ErrNilBitcoinConfig
	}

	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	cacheOpts := []ttlcache.Option[string, *blockchain.Transaction]{
		ttlcache.WithTTL[string, *blockchain.Transaction](options.cacheTTL),
		ttlcache.WithDisableTouchOnHit[string, *blockchain.Transaction](),
	}

	if options.cacheCapacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, *blockchain.Transaction](options.cacheCapacity))
	}

	txs := ttlcache.New(cacheOpts...)
	go txs.Start()

	logger := options.logger.With().Str("component", "mempool").Logger()

	return &Oracle{
		client:           client,
		btcConfig:        btcConfig,
		txs:              txs,
		fetchConcurrency: options.fetchConcurrency,
		logger:           &logger,
	}, nil
}

// GetMempoolOutputs returns the recognized mempool outputs paying to the
// address, ordered by txid and then output index.
func (o *Oracle) GetMempoolOutputs(ctx context.Context, address string) ([]*addrindex.Output, error) {
	params := o.btcConfig.GetParams()

	hash, err := addrindex.DecodeAddressHash(address, params)
	if err != nil {
		return nil, err
	}

	txIDs, err := o.client.GetMempoolTxIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get mempool txids: %w", err)
	}

	// the node lists the mempool in no particular order
	txIDs = slices.Clone(txIDs)
	slices.Sort(txIDs)

	txs, err := o.transactions(ctx, txIDs)
	if err != nil {
		return nil, err
	}

	var outputs []*addrindex.Output

	for _, tx := range txs {
		if tx == nil {
			continue
		}

		for i, out := range tx.GetOutputs() {
			script, err := out.ScriptBytes()
			if err != nil {
				return nil, fmt.Errorf("failed to read script of %s:%d: %w", tx.GetID(), i, err)
			}

			outHash, ok := addrindex.ExtractAddressHash(script, params)
			if !ok || outHash != hash {
				continue
			}

			satoshis, err := out.GetValue().Satoshis(o.btcConfig.GetDecimals())
			if err != nil {
				return nil, fmt.Errorf("failed to convert value of %s:%d: %w", tx.GetID(), i, err)
			}

			outputs = append(outputs, &addrindex.Output{
				Address:     address,
				TxID:        tx.GetID(),
				OutputIndex: uint32(i),
				Satoshis:    satoshis,
				Script:      script,
				BlockHeight: addrindex.MempoolHeight,
			})
		}
	}

	return outputs, nil
}

// transactions returns the transactions in txIDs order. A transaction that
// left the mempool before it was downloaded is nil.
func (o *Oracle) transactions(ctx context.Context, txIDs []string) ([]*blockchain.Transaction, error) {
	txs := make([]*blockchain.Transaction, len(txIDs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.fetchConcurrency)

	fetched := 0

	for i, txID := range txIDs {
		if item := o.txs.Get(txID); item != nil {
			txs[i] = item.Value()

			continue
		}

		fetched++

		g.Go(func() error {
			tx, err := o.client.GetTransaction(gCtx, txID)
			if err != nil {
				if errors.Is(err, restclient.ErrNotFound) {
					return nil
				}

				return fmt.Errorf("failed to get mempool transaction %s: %w", txID, err)
			}

			o.txs.Set(txID, tx, ttlcache.DefaultTTL)
			txs[i] = tx

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Debug().
		Int("mempoolSize", len(txIDs)).
		Int("fetched", fetched).
		Msg("loaded mempool transactions")

	return txs, nil
}

// Close stops the cache expiration loop.
func (o *Oracle) Close() {
	o.txs.Stop()
}

var _ addrindex.MempoolOracle = (*Oracle)(nil)
