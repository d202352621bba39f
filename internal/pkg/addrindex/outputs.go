package addrindex

import (
	"context"
	"encoding/hex"
	"fmt"
	"iter"
)

// Outputs lazily scans the confirmed outputs of the address in key order, which is
// chronological order. The sequence is single use. The underlying store iterator is
// released when the scan ends, fails or the consumer stops early.
func (m *Module) Outputs(ctx context.Context, address string) iter.Seq2[*Output, error] {
	return func(yield func(*Output, error) bool) {
		hash, err := DecodeAddressHash(address, m.btcConfig.GetParams())
		if err != nil {
			yield(nil, err)

			return
		}

		start, end := AddressRange(hash)

		it := m.store.Range(ctx, start, end)
		defer it.Release()

		for it.Next() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)

				return
			}

			out, err := decodeOutput(address, it.Key(), it.Value())
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(out, nil) {
				return
			}
		}

		if err := it.Error(); err != nil {
			yield(nil, fmt.Errorf("%w: %w", ErrStoreRead, err))
		}
	}
}

// GetOutputs returns every output ever paid to the address. With includeMempool the
// unconfirmed outputs follow the confirmed ones. On error no partial result is returned.
func (m *Module) GetOutputs(ctx context.Context, address string, includeMempool bool) ([]*Output, error) {
	if includeMempool && m.mempool == nil {
		return nil, ErrNoMempoolOracle
	}

	outputs := []*Output{}

	for out, err := range m.Outputs(ctx, address) {
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, out)
	}

	if !includeMempool {
		return outputs, nil
	}

	mempoolOutputs, err := m.mempool.GetMempoolOutputs(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get mempool outputs: %w", err)
	}

	return append(outputs, mempoolOutputs...), nil
}

func decodeOutput(address, key string, value []byte) (*Output, error) {
	k, err := DecodeKey(key)
	if err != nil {
		return nil, err
	}

	v, err := DecodeValue(string(value))
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", key, err)
	}

	return &Output{
		Address:     address,
		TxID:        hex.EncodeToString(k.TxID),
		OutputIndex: k.OutputIndex,
		Satoshis:    v.Satoshis,
		Script:      v.Script,
		BlockHeight: int64(v.Height),
	}, nil
}
