package blockchain

type Block struct {
	BlockHeader
	Transactions []*Transaction `json:"tx"`
}

func (b *Block) GetTransactions() []*Transaction {
	return b.Transactions
}

// BlockHeader is a structure for storing the block header data
// It is used for getting the block header from the blockchain
// This realisation is most compatible with bitcoin blockchain
type BlockHeader struct {
	Hash          Hash    `json:"hash"`
	NextBlockHash Hash    `json:"nextblockhash"`
	PrevBlockHash Hash    `json:"previousblockhash"`
	Height        int64   `json:"height"`
	Confirmations int64   `json:"confirmations"`
	MerkleRoot    string  `json:"merkleroot"`
	Size          int64   `json:"size"`
	Time          int64   `json:"time"`
	MedianTime    int64   `json:"mediantime"`
	Version       int     `json:"version"`
	Weight        int64   `json:"weight"`
	Difficulty    float64 `json:"difficulty"`
	Bits          string  `json:"bits"`
}

func (b *BlockHeader) Valid() bool {
	return len(b.Hash) != 0
}

func (b *BlockHeader) GetHash() Hash {
	return b.Hash
}

func (b *BlockHeader) GetNextBlockHash() Hash {
	return b.NextBlockHash
}

func (b *BlockHeader) GetPrevBlockHash() Hash {
	return b.PrevBlockHash
}

func (b *BlockHeader) GetHeight() int64 {
	return b.Height
}

// IsStale reports whether the node no longer considers the block part of the active chain.
// Bitcoin Core reports -1 confirmations for such blocks.
func (b *BlockHeader) IsStale() bool {
	return b.Confirmations < 0
}

func (b *BlockHeader) GetTime() int64 {
	return b.Time
}

// GetTimeMillis returns the header timestamp in milliseconds.
func (b *BlockHeader) GetTimeMillis() int64 {
	return b.Time * 1000
}
