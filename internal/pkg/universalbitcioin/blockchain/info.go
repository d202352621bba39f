package blockchain

import "time"

type BlockchainInfo struct {
	Chain         string `json:"chain"`
	Blocks        int64  `json:"blocks"`
	Headers       int64  `json:"headers"`
	BestBlockHash Hash   `json:"bestblockhash"`
	Time          int64  `json:"time"`
	MedianTime    int64  `json:"mediantime"`
	Pruned        bool   `json:"pruned"`
}

// GetTime returns the best block time. Nodes older than v23 do not report it,
// the median time is used then.
func (b *BlockchainInfo) GetTime() time.Time {
	if b.Time != 0 {
		return time.Unix(b.Time, 0)
	}

	return time.Unix(b.MedianTime, 0)
}

func (b *BlockchainInfo) GetBlocksCount() int64 {
	return b.Blocks
}

func (b *BlockchainInfo) GetHeadersCount() int64 {
	return b.Headers
}

// UTXOSet is the answer of the getutxos endpoint. Bitmap holds one '0' or '1'
// per requested outpoint, in request order.
type UTXOSet struct {
	ChainHeight  int64           `json:"chainHeight"`
	ChaintipHash Hash            `json:"chaintipHash"`
	Bitmap       string          `json:"bitmap"`
	UTXOs        []*UTXOSetEntry `json:"utxos"`
}

type UTXOSetEntry struct {
	Height       int64         `json:"height"`
	Value        *AmountValue  `json:"value"`
	ScriptPubKey *ScriptPubKey `json:"scriptPubKey"`
}

// Outpoint references a transaction output.
type Outpoint struct {
	TxID string
	VOut uint32
}
