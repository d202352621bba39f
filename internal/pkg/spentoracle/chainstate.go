package spentoracle

import (
	"context"
	"fmt"
)

type CoinsView interface {
	HasCoin(ctx context.Context, txID string, vout uint32) (bool, error)
}

// ChainstateOracle answers from a Bitcoin Core chainstate snapshot. The
// snapshot knows nothing about the mempool, so includeMempool is ignored.
type ChainstateOracle struct {
	coins CoinsView
}

func NewChainstateOracle(coins CoinsView) (*ChainstateOracle, error) {
	if coins == nil {
		return nil, ErrNilClient
	}

	return &ChainstateOracle{coins: coins}, nil
}

func (o *ChainstateOracle) IsSpent(ctx context.Context, txID string, outputIndex uint32, _ bool) (bool, error) {
	found, err := o.coins.HasCoin(ctx, txID, outputIndex)
	if err != nil {
		return false, fmt.Errorf("failed to check %s:%d: %w", txID, outputIndex, err)
	}

	return !found, nil
}
