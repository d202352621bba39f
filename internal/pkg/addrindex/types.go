package addrindex

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
)

// AddressHashSize is the size of HASH160 digests.
const AddressHashSize = 20

// MempoolHeight is the BlockHeight of outputs that are not confirmed yet.
const MempoolHeight int64 = -1

// AddressHash identifies the payee of P2PKH, P2SH and P2PK outputs.
type AddressHash [AddressHashSize]byte

func (h AddressHash) String() string {
	return hex.EncodeToString(h[:])
}

// Output is an output paying to an address. It holds no reference to the store.
type Output struct {
	Address     string `json:"address"`
	TxID        string `json:"txid"`
	OutputIndex uint32 `json:"outputIndex"`
	Satoshis    uint64 `json:"satoshis"`
	Script      []byte `json:"script"`
	BlockHeight int64  `json:"blockHeight"`
}

// MarshalJSON writes the script as hex, the way it is stored in the index.
func (o Output) MarshalJSON() ([]byte, error) {
	type output Output

	return json.Marshal(struct {
		output
		Script string `json:"script"`
	}{
		output: output(o),
		Script: hex.EncodeToString(o.Script),
	})
}

func (o *Output) Ref() OutputRef {
	return OutputRef{TxID: o.TxID, OutputIndex: o.OutputIndex}
}

// OutputRef points to an output by its transaction id and index.
type OutputRef struct {
	TxID        string
	OutputIndex uint32
}

// OutputRefFromInput returns the reference of the output spent by the input.
func OutputRefFromInput(in *blockchain.TransactionInput) OutputRef {
	return OutputRef{TxID: in.GetTxID(), OutputIndex: in.GetVOut()}
}

type BitcoinConfig interface {
	GetDecimals() int
	GetParams() *chaincfg.Params
}

// SpentOracle knows whether an output has been spent. With includeMempool the
// oracle also counts spends by unconfirmed transactions.
type SpentOracle interface {
	IsSpent(ctx context.Context, txID string, outputIndex uint32, includeMempool bool) (bool, error)
}

// MempoolOracle returns the unconfirmed outputs paying to the address.
type MempoolOracle interface {
	GetMempoolOutputs(ctx context.Context, address string) ([]*Output, error)
}

// API is the query surface of the address index.
type API interface {
	GetBalance(ctx context.Context, address string, includeMempool bool) (uint64, error)
	GetOutputs(ctx context.Context, address string, includeMempool bool) ([]*Output, error)
	GetUnspentOutputs(ctx context.Context, address string, includeMempool bool) ([]*Output, error)
	IsSpent(ctx context.Context, ref OutputRef, includeMempool bool) (bool, error)
}
