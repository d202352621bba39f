package addrindex

import (
	"context"
)

// IsSpent asks the spent oracle about the output. includeMempool is passed through,
// the module does not tell confirmed and unconfirmed spends apart itself.
func (m *Module) IsSpent(ctx context.Context, ref OutputRef, includeMempool bool) (bool, error) {
	return m.spentOracle.IsSpent(ctx, ref.TxID, ref.OutputIndex, includeMempool)
}

// IsUnspent is the exact negation of IsSpent.
func (m *Module) IsUnspent(ctx context.Context, ref OutputRef, includeMempool bool) (bool, error) {
	spent, err := m.IsSpent(ctx, ref, includeMempool)
	if err != nil {
		return false, err
	}

	return !spent, nil
}
