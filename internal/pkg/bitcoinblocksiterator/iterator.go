package bitcoinblocksiterator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/semaphore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/puzpuzpuz/xsync"
)

type BlockchainRESTClient interface {
	GetBlock(ctx context.Context, hash blockchain.Hash) (*blockchain.Block, error)
	GetBlockHeader(ctx context.Context, hash blockchain.Hash) (*blockchain.BlockHeader, error)
	GetBlockHash(ctx context.Context, height int64) (blockchain.Hash, error)
}

// BitcoinBlocksIterator is an iterator for getting the blocks from the bitcoin blockchain
// It is used for getting the blocks from the blockchain in the right order
type BitcoinBlocksIterator struct {
	opts *BitcoinBlocksIteratorOptions

	restClient BlockchainRESTClient
}

type sequencedHeader struct {
	seq    uint64
	header *blockchain.BlockHeader
}

func NewBitcoinBlocksIterator(
	universalRESTClient BlockchainRESTClient,
	opts ...BitcoinBlocksIteratorOption,
) (*BitcoinBlocksIterator, error) {
	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &BitcoinBlocksIterator{
		opts:       options,
		restClient: universalRESTClient,
	}, nil
}

// Iterate returns a channel with blocks starting from startFromBlockHash (inclusive)
// and following the active chain. Headers are walked one by one, blocks are
// downloaded concurrently and delivered in chain order.
//
// If a walked header is no longer on the active chain, the block at the same height
// of the active chain is delivered and the channel is closed. The consumer is expected
// to roll back and iterate again. The channel is closed when ctx is done.
func (b *BitcoinBlocksIterator) Iterate(
	ctx context.Context,
	startFromBlockHash string,
) (<-chan *blockchain.Block, error) {
	startFromBlockHashBytes, err := blockchain.NewHashFromHEX(startFromBlockHash)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start from block hash: %w", err)
	}

	headersCh := make(chan sequencedHeader, b.opts.blockHeadersBufferSize)

	go b.downloadBlockHeaders(ctx, startFromBlockHashBytes, headersCh)

	return b.downloadBlocks(ctx, startFromBlockHashBytes, headersCh), nil
}

func (s *BitcoinBlocksIterator) downloadBlocks(
	ctx context.Context,
	startedFrom blockchain.Hash,
	headersCh <-chan sequencedHeader,
) <-chan *blockchain.Block {
	s.opts.logger.Info().
		Str("startedFrom", startedFrom.String()).
		Int64("concurrentBlocksDownloadLimit", s.opts.concurrentBlocksDownloadLimit).
		Msg("begin downloading blocks")

	downloadedBlocks := make(chan *blockchain.Block, s.opts.concurrentBlocksDownloadLimit)
	downloadBlocksMx := sync.Mutex{}

	// blocks finished out of order wait here until their predecessors are sent
	orderingBlocks := xsync.NewMapOf[*blockchain.Block]()

	var nextSeqToSend uint64

	go func() {
		wg := sync.WaitGroup{}

		defer close(downloadedBlocks)
		defer wg.Wait()
		defer s.opts.logger.Info().Msg("stopped downloading blocks")

		downloadBlocksSemaphore := semaphore.New(s.opts.concurrentBlocksDownloadLimit)

		for h := range headersCh {
			if !downloadBlocksSemaphore.Acquire(ctx) {
				return
			}

			s.opts.logger.Debug().
				Str("hash", h.header.GetHash().String()).
				Uint64("seq", h.seq).
				Msg("got new header, begin downloading the block")

			wg.Add(1)

			go func() {
				defer wg.Done()
				defer downloadBlocksSemaphore.Release()

				block, ok := s.downloadBlock(ctx, h.header.GetHash())
				if !ok {
					return
				}

				downloadBlocksMx.Lock()
				defer downloadBlocksMx.Unlock()

				orderingBlocks.Store(strconv.FormatUint(h.seq, 10), block)

				for {
					key := strconv.FormatUint(nextSeqToSend, 10)

					nextBlock, ok := orderingBlocks.Load(key)
					if !ok {
						return
					}

					select {
					case <-ctx.Done():
						return
					case downloadedBlocks <- nextBlock:
					}

					orderingBlocks.Delete(key)
					nextSeqToSend++
				}
			}()
		}
	}()

	return downloadedBlocks
}

func (s *BitcoinBlocksIterator) downloadBlock(ctx context.Context, hash blockchain.Hash) (*blockchain.Block, bool) {
	for {
		block, err := s.restClient.GetBlock(ctx, hash)
		if err == nil {
			s.opts.logger.Debug().
				Str("hash", block.GetHash().String()).
				Int64("height", block.GetHeight()).
				Int("txs", len(block.GetTransactions())).
				Msg("downloaded the block")

			return block, true
		}

		s.opts.logger.Error().
			Str("hash", hash.String()).
			Dur("waitFor", s.opts.waitAfterErrorDuration).
			Err(err).
			Msg("failed to download block")

		if !sleep(ctx, s.opts.waitAfterErrorDuration) {
			return nil, false
		}
	}
}

func (s *BitcoinBlocksIterator) downloadBlockHeaders(
	ctx context.Context,
	fromBlockHash blockchain.Hash,
	headersCh chan<- sequencedHeader,
) {
	defer close(headersCh)

	s.opts.logger.Info().
		Str("fromBlockHash", fromBlockHash.String()).
		Int("blockHeadersBufferSize", s.opts.blockHeadersBufferSize).
		Msg("begin downloading block headers")

	var seq uint64

	send := func(header *blockchain.BlockHeader) bool {
		select {
		case <-ctx.Done():
			return false
		case headersCh <- sequencedHeader{seq: seq, header: header}:
			seq++

			return true
		}
	}

	currentBlockHash := fromBlockHash
	alreadySentCurrentHeader := false

	// Headers are cheaper than blocks, so the chain is walked by headers
	// and the blocks are downloaded in parallel
	for ctx.Err() == nil {
		header, err := s.restClient.GetBlockHeader(ctx, currentBlockHash)
		if err != nil {
			s.opts.logger.Error().Str("hash", currentBlockHash.String()).Err(err).Msg("failed to get block header")

			sleep(ctx, s.opts.waitAfterErrorDuration)

			continue
		}

		if header.IsStale() {
			replacement, err := s.activeHeaderAt(ctx, header.GetHeight())
			if err != nil {
				s.opts.logger.Error().Int64("height", header.GetHeight()).Err(err).Msg("failed to get active chain header")

				sleep(ctx, s.opts.waitAfterErrorDuration)

				continue
			}

			s.opts.logger.Warn().
				Str("staleHash", header.GetHash().String()).
				Str("activeHash", replacement.GetHash().String()).
				Int64("height", replacement.GetHeight()).
				Msg("walked header left the active chain")

			send(replacement)

			return
		}

		if !alreadySentCurrentHeader {
			if !send(header) {
				return
			}

			alreadySentCurrentHeader = true
		}

		if len(header.GetNextBlockHash()) != 0 && !header.GetNextBlockHash().Equal(currentBlockHash) {
			currentBlockHash = header.GetNextBlockHash()
			alreadySentCurrentHeader = false

			continue
		}

		s.opts.logger.Debug().
			Dur("waitFor", s.opts.downloadHeadersInterval).
			Msg("there is no different next block header")

		sleep(ctx, s.opts.downloadHeadersInterval)
	}
}

// activeHeaderAt returns the active chain header at the height, or at the
// highest lower height when the active chain became shorter.
func (s *BitcoinBlocksIterator) activeHeaderAt(ctx context.Context, height int64) (*blockchain.BlockHeader, error) {
	for h := height; h >= 0; h-- {
		hash, err := s.restClient.GetBlockHash(ctx, h)
		if err != nil {
			if errors.Is(err, restclient.ErrNotFound) {
				continue
			}

			return nil, err
		}

		return s.restClient.GetBlockHeader(ctx, hash)
	}

	return nil, ErrNoActiveChain
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
