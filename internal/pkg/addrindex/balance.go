package addrindex

import (
	"context"
	"fmt"
	"math/bits"
)

// GetBalance sums the unspent outputs of the address. ErrNoOutputsForAddress is
// returned as is, a never paid address has no balance rather than a zero one.
func (m *Module) GetBalance(ctx context.Context, address string, includeMempool bool) (uint64, error) {
	outputs, err := m.GetUnspentOutputs(ctx, address, includeMempool)
	if err != nil {
		return 0, err
	}

	var balance uint64
	for _, out := range outputs {
		var carry uint64

		balance, carry = bits.Add64(balance, out.Satoshis, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: balance of %s overflows at %s:%d", ErrMalformedValue, address, out.TxID, out.OutputIndex)
		}
	}

	return balance, nil
}
