package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/scanner"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/state"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexevents"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/rs/zerolog"
)

// Module turns a block into store operations. With addOutput the block is
// being connected, otherwise it is being disconnected.
type Module interface {
	Name() string
	BlockHandler(ctx context.Context, block *blockchain.Block, addOutput bool) ([]keyvaluestore.Operation, error)
}

type BlockFetcher interface {
	GetBlock(ctx context.Context, hash blockchain.Hash) (*blockchain.Block, error)
	GetBlockHash(ctx context.Context, height int64) (blockchain.Hash, error)
}

// Indexer keeps the modules in step with the chain. It is the single writer
// of the store: blocks are connected and disconnected one at a time, and the
// operations of all modules are committed together with the tip.
type Indexer struct {
	mx sync.Mutex

	modules []Module
	names   map[string]struct{}

	tips    *state.TipStore
	batch   keyvaluestore.BatchWriter
	fetcher BlockFetcher

	opts   *IndexerOptions
	logger *zerolog.Logger
}

func New(
	store keyvaluestore.Reader,
	batch keyvaluestore.BatchWriter,
	fetcher BlockFetcher,
	opts ...IndexerOption,
) (*Indexer, error) {
	switch {
	case store == nil:
		return nil, ErrNilStore
	case batch == nil:
		return nil, ErrNilBatchWriter
	case fetcher == nil:
		return nil, ErrNilBlockFetcher
	}

	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	tips, err := state.NewTipStore(store)
	if err != nil {
		return nil, err
	}

	logger := options.logger.With().Str("component", "indexer").Logger()

	return &Indexer{
		names:   map[string]struct{}{},
		tips:    tips,
		batch:   batch,
		fetcher: fetcher,
		opts:    options,
		logger:  &logger,
	}, nil
}

func (ix *Indexer) Register(m Module) error {
	ix.mx.Lock()
	defer ix.mx.Unlock()

	if _, ok := ix.names[m.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrModuleExists, m.Name())
	}

	ix.names[m.Name()] = struct{}{}
	ix.modules = append(ix.modules, m)

	return nil
}

// Tip returns the last committed block, found is false for an empty index.
func (ix *Indexer) Tip(ctx context.Context) (*state.Tip, bool, error) {
	return ix.tips.Get(ctx)
}

// ConnectBlock commits the block's operations of every module. The block must
// extend the tip, or be at the start height when the index is empty. Nothing
// is written when an error is returned.
func (ix *Indexer) ConnectBlock(ctx context.Context, block *blockchain.Block) error {
	ix.mx.Lock()
	defer ix.mx.Unlock()

	tip, found, err := ix.tips.Get(ctx)
	if err != nil {
		return err
	}

	switch {
	case found && block.GetHash().String() == tip.Hash:
		return ErrBlockAlreadyIndexed
	case found && block.GetPrevBlockHash().String() != tip.Hash:
		return fmt.Errorf(
			"%w: block %s at %d builds on %s, tip is %s at %d",
			ErrChainMismatch,
			block.GetHash(), block.GetHeight(), block.GetPrevBlockHash(), tip.Hash, tip.Height,
		)
	case !found && block.GetHeight() != ix.opts.startHeight:
		return fmt.Errorf("%w: got %d, start height is %d", ErrNextBlockTooFar, block.GetHeight(), ix.opts.startHeight)
	}

	newTip := state.Tip{
		Hash:     block.GetHash().String(),
		PrevHash: block.GetPrevBlockHash().String(),
		Height:   block.GetHeight(),
	}

	tipOp, err := ix.tips.PutOperation(newTip)
	if err != nil {
		return err
	}

	n, err := ix.commit(ctx, block, true, tipOp)
	if err != nil {
		return err
	}

	ix.opts.metrics.blockConnected()
	ix.opts.metrics.setTip(newTip.Height)

	ix.logger.Info().
		Str("hash", newTip.Hash).
		Int64("height", newTip.Height).
		Int("txs", len(block.GetTransactions())).
		Int("operations", n).
		Msg("connected block")

	ix.publish(ctx, indexevents.Event{
		Type:       indexevents.EventTypeConnected,
		Hash:       newTip.Hash,
		PrevHash:   newTip.PrevHash,
		Height:     newTip.Height,
		Operations: n,
		Time:       time.Now(),
	})

	return nil
}

// DisconnectTip reverts the operations of the tip block and moves the tip
// to its parent. Disconnecting the block at the start height empties the index.
func (ix *Indexer) DisconnectTip(ctx context.Context) error {
	ix.mx.Lock()
	defer ix.mx.Unlock()

	tip, found, err := ix.tips.Get(ctx)
	if err != nil {
		return err
	}

	if !found {
		return ErrEmptyIndex
	}

	tipHash, err := blockchain.NewHashFromHEX(tip.Hash)
	if err != nil {
		return fmt.Errorf("%w: %w", state.ErrMalformedTip, err)
	}

	block, err := ix.fetcher.GetBlock(ctx, tipHash)
	if err != nil {
		return fmt.Errorf("failed to get tip block %s: %w", tip.Hash, err)
	}

	tipOp := ix.tips.DeleteOperation()

	if tip.PrevHash != "" && tip.Height > ix.opts.startHeight {
		tipOp, err = ix.parentTipOperation(ctx, tip)
		if err != nil {
			return err
		}
	}

	n, err := ix.commit(ctx, block, false, tipOp)
	if err != nil {
		return err
	}

	ix.opts.metrics.blockDisconnected()
	ix.opts.metrics.setTip(tip.Height - 1)

	ix.logger.Warn().
		Str("hash", tip.Hash).
		Int64("height", tip.Height).
		Int("operations", n).
		Msg("disconnected block")

	ix.publish(ctx, indexevents.Event{
		Type:       indexevents.EventTypeDisconnected,
		Hash:       tip.Hash,
		PrevHash:   tip.PrevHash,
		Height:     tip.Height,
		Operations: n,
		Time:       time.Now(),
	})

	return nil
}

// parentTipOperation builds the tip record of the parent. Its own parent is
// not kept in the tip record, so the parent block is fetched.
func (ix *Indexer) parentTipOperation(ctx context.Context, tip *state.Tip) (keyvaluestore.Operation, error) {
	parentHash, err := blockchain.NewHashFromHEX(tip.PrevHash)
	if err != nil {
		return keyvaluestore.Operation{}, fmt.Errorf("%w: %w", state.ErrMalformedTip, err)
	}

	parent, err := ix.fetcher.GetBlock(ctx, parentHash)
	if err != nil {
		return keyvaluestore.Operation{}, fmt.Errorf("failed to get parent block %s: %w", tip.PrevHash, err)
	}

	return ix.tips.PutOperation(state.Tip{
		Hash:     tip.PrevHash,
		PrevHash: parent.GetPrevBlockHash().String(),
		Height:   parent.GetHeight(),
	})
}

// commit runs every module and writes their operations followed by tipOp in one batch.
func (ix *Indexer) commit(
	ctx context.Context,
	block *blockchain.Block,
	addOutput bool,
	tipOp keyvaluestore.Operation,
) (int, error) {
	var (
		ops       []keyvaluestore.Operation
		perModule = make([]int, len(ix.modules))
	)

	for i, m := range ix.modules {
		moduleOps, err := m.BlockHandler(ctx, block, addOutput)
		if err != nil {
			return 0, fmt.Errorf("module %s failed to handle block %s: %w", m.Name(), block.GetHash(), err)
		}

		perModule[i] = len(moduleOps)
		ops = append(ops, moduleOps...)
	}

	ops = append(ops, tipOp)

	if err := ix.batch.WriteBatch(ctx, ops); err != nil {
		return 0, fmt.Errorf("failed to commit block %s: %w", block.GetHash(), err)
	}

	opType := keyvaluestore.OperationTypePut
	if !addOutput {
		opType = keyvaluestore.OperationTypeDelete
	}

	for i, m := range ix.modules {
		ix.opts.metrics.addOperations(m.Name(), opType.String(), perModule[i])
	}

	return len(ops) - 1, nil
}

func (ix *Indexer) publish(ctx context.Context, event indexevents.Event) {
	if err := ix.opts.publisher.Publish(ctx, event); err != nil {
		ix.logger.Error().
			Err(err).
			Str("hash", event.Hash).
			Str("type", string(event.Type)).
			Msg("failed to publish index event")
	}
}

// HandleBlock is the scanner callback. A block that is already the tip is
// skipped. A block that does not extend the tip disconnects the tip and asks
// the scanner to start over from the new one.
func (ix *Indexer) HandleBlock(ctx context.Context, block *blockchain.Block) error {
	err := ix.ConnectBlock(ctx, block)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrBlockAlreadyIndexed):
		return nil
	case errors.Is(err, ErrChainMismatch):
		ix.logger.Warn().Err(err).Msg("chain reorganization detected")

		if err := ix.DisconnectTip(ctx); err != nil {
			return fmt.Errorf("failed to disconnect tip: %w", err)
		}

		return fmt.Errorf("%w: %w", scanner.ErrRestart, err)
	case errors.Is(err, ErrNextBlockTooFar):
		return fmt.Errorf("%w: %w", scanner.ErrRestart, err)
	default:
		return err
	}
}

// GetLastScannedBlockHash tells the scanner where to start: the tip, or the
// active chain block at the start height for an empty index.
func (ix *Indexer) GetLastScannedBlockHash(ctx context.Context) (string, error) {
	tip, found, err := ix.tips.Get(ctx)
	if err != nil {
		return "", err
	}

	if found {
		return tip.Hash, nil
	}

	hash, err := ix.fetcher.GetBlockHash(ctx, ix.opts.startHeight)
	if err != nil {
		return "", fmt.Errorf("failed to get block hash at start height %d: %w", ix.opts.startHeight, err)
	}

	return hash.String(), nil
}

var _ scanner.ScannerState = (*Indexer)(nil)
