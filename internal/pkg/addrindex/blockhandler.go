package addrindex

import (
	"context"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
)

// BlockHandler returns the index operations for every recognized output of the block,
// in transaction order and then output order. With addOutput it returns puts,
// otherwise deletes of the very same keys. Inputs are never looked at.
//
// Either the whole block is handled or an error is returned with no operations.
func (m *Module) BlockHandler(
	ctx context.Context,
	block *blockchain.Block,
	addOutput bool,
) ([]keyvaluestore.Operation, error) {
	if block.GetHeight() < 0 || block.GetTime() < 0 {
		return nil, fmt.Errorf("%w: height %d, time %d", ErrInvalidBlock, block.GetHeight(), block.GetTime())
	}

	var (
		params    = m.btcConfig.GetParams()
		timestamp = uint64(block.GetTimeMillis())
		height    = uint64(block.GetHeight())
		ops       = make([]keyvaluestore.Operation, 0, len(block.GetTransactions()))
	)

	for _, tx := range block.GetTransactions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txID, err := blockchain.NewHashFromHEX(tx.GetID())
		if err != nil || len(txID) == 0 {
			return nil, fmt.Errorf("%w: invalid txid %q in block %s", ErrInvalidBlock, tx.GetID(), block.GetHash())
		}

		for i, out := range tx.GetOutputs() {
			outputIndex := uint32(i)

			script, err := out.ScriptBytes()
			if err != nil {
				return nil, fmt.Errorf("failed to read script of %s:%d: %w", tx.GetID(), outputIndex, err)
			}

			hash, ok := ExtractAddressHash(script, params)
			if !ok {
				m.logger.Debug().
					Str("txID", tx.GetID()).
					Uint32("outputIndex", outputIndex).
					Int64("height", block.GetHeight()).
					Msg("skipping output with unrecognized script")

				continue
			}

			key := EncodeKey(&OutputKey{
				AddressHash: hash,
				Timestamp:   timestamp,
				TxID:        txID,
				OutputIndex: outputIndex,
			})

			if !addOutput {
				ops = append(ops, keyvaluestore.DeleteOperation(key))

				continue
			}

			satoshis, err := out.GetValue().Satoshis(m.btcConfig.GetDecimals())
			if err != nil {
				return nil, fmt.Errorf("failed to convert value of %s:%d: %w", tx.GetID(), outputIndex, err)
			}

			ops = append(ops, keyvaluestore.PutOperation(key, []byte(EncodeValue(&OutputValue{
				Satoshis: satoshis,
				Script:   script,
				Height:   height,
			}))))
		}
	}

	m.logger.Debug().
		Str("hash", block.GetHash().String()).
		Int64("height", block.GetHeight()).
		Bool("addOutput", addOutput).
		Int("operations", len(ops)).
		Msg("handled block")

	return ops, nil
}
