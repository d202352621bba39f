package spentoracle

import (
	"context"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
)

type UTXOClient interface {
	GetUTXOs(ctx context.Context, checkMempool bool, outpoints ...blockchain.Outpoint) (*blockchain.UTXOSet, error)
}

// RESTOracle asks the node's getutxos endpoint. An output the node does not
// report as unspent is spent.
type RESTOracle struct {
	client UTXOClient
}

func NewRESTOracle(client UTXOClient) (*RESTOracle, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	return &RESTOracle{client: client}, nil
}

func (o *RESTOracle) IsSpent(ctx context.Context, txID string, outputIndex uint32, includeMempool bool) (bool, error) {
	set, err := o.client.GetUTXOs(ctx, includeMempool, blockchain.Outpoint{TxID: txID, VOut: outputIndex})
	if err != nil {
		return false, fmt.Errorf("failed to check %s:%d: %w", txID, outputIndex, err)
	}

	switch set.Bitmap {
	case "1":
		return false, nil
	case "0":
		return true, nil
	default:
		return false, fmt.Errorf("%w: bitmap %q", ErrUnexpectedBitmap, set.Bitmap)
	}
}
