package addrindex

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GetUnspentOutputs returns the outputs of the address that are not spent, in scan order.
// An address that was never paid fails with ErrNoOutputsForAddress, while an address
// whose outputs are all spent gets an empty result.
func (m *Module) GetUnspentOutputs(ctx context.Context, address string, includeMempool bool) ([]*Output, error) {
	outputs, err := m.GetOutputs(ctx, address, includeMempool)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOutputsForAddress, address)
	}

	unspent := make([]bool, len(outputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.spentCheckConcurrency)

	for i, out := range outputs {
		g.Go(func() error {
			ok, err := m.IsUnspent(gCtx, out.Ref(), includeMempool)
			if err != nil {
				return fmt.Errorf("failed to check %s:%d: %w", out.TxID, out.OutputIndex, err)
			}

			unspent[i] = ok

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*Output, 0, len(outputs))
	for i, out := range outputs {
		if unspent[i] {
			result = append(result, out)
		}
	}

	return result, nil
}
