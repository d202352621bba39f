package blockchaininfo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/rs/zerolog"
)

type BlockchainClient interface {
	// GetBlockchainInfo must return the current blockchain info
	GetBlockchainInfo(ctx context.Context) (*blockchain.BlockchainInfo, error)
}

type BitcoinConfig interface {
	GetBlockGenerationInterval() time.Duration
}

// BlockchainInfo keeps a recent copy of the node's chain info. The copy is
// refreshed when a new block is expected, and at least every refresh interval.
type BlockchainInfo struct {
	mx                   sync.RWMutex
	latestBlockchainInfo *blockchain.BlockchainInfo

	btcConfig BitcoinConfig
	btcClient BlockchainClient
	logger    *zerolog.Logger

	refreshInterval time.Duration
	retryInterval   time.Duration

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(
	ctx context.Context,
	logger *zerolog.Logger,
	client BlockchainClient,
	btcConfig BitcoinConfig,
	refreshInterval time.Duration,
) (*BlockchainInfo, error) {
	if refreshInterval <= 0 {
		return nil, ErrInvalidRefreshInterval
	}

	blockchainInfo, err := client.GetBlockchainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockchain info: %w", err)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	syncCtx, cancel := context.WithCancel(context.Background())

	i := &BlockchainInfo{
		latestBlockchainInfo: blockchainInfo,
		btcConfig:            btcConfig,
		btcClient:            client,
		logger:               logger,
		refreshInterval:      refreshInterval,
		retryInterval:        time.Second * 5,

		cancel: cancel,
		done:   make(chan struct{}),
	}

	go i.runSyncing(syncCtx)

	return i, nil
}

func (b *BlockchainInfo) nextUpdateIn() time.Duration {
	b.mx.RLock()
	latest := b.latestBlockchainInfo
	b.mx.RUnlock()

	wait := time.Until(latest.GetTime().Add(b.btcConfig.GetBlockGenerationInterval()))
	if wait <= 0 || wait > b.refreshInterval {
		return b.refreshInterval
	}

	return wait
}

func (b *BlockchainInfo) runSyncing(ctx context.Context) {
	defer close(b.done)

	timer := time.NewTimer(b.nextUpdateIn())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		blockchainInfo, err := b.btcClient.GetBlockchainInfo(ctx)
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to get blockchain info")
			timer.Reset(b.retryInterval)

			continue
		}

		b.mx.Lock()
		b.latestBlockchainInfo = blockchainInfo
		b.mx.Unlock()

		b.logger.Debug().
			Int64("blocks", blockchainInfo.GetBlocksCount()).
			Int64("headers", blockchainInfo.GetHeadersCount()).
			Msg("updated blockchain info")

		timer.Reset(b.nextUpdateIn())
	}
}

// Stop ends the background refresh and waits for it to return.
func (b *BlockchainInfo) Stop() error {
	b.stopOnce.Do(b.cancel)
	<-b.done

	return nil
}

func (b *BlockchainInfo) GetBlocksCount(ctx context.Context) (int64, error) {
	b.mx.RLock()
	defer b.mx.RUnlock()

	return b.latestBlockchainInfo.GetBlocksCount(), nil
}

func (b *BlockchainInfo) GetHeadersCount(ctx context.Context) (int64, error) {
	b.mx.RLock()
	defer b.mx.RUnlock()

	return b.latestBlockchainInfo.GetHeadersCount(), nil
}
