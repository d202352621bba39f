package utxo

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/ciricc/btc-address-indexer/internal/pkg/binaryutils"
)

type coinMarshaled struct {
	IsCoinbase bool        `json:"coinbase"`
	Height     uint64      `json:"height"`
	Output     *wire.TxOut `json:"output"`
}

type txOutMarshaled struct {
	Coin  *coinMarshaled `json:"coin"`
	TxID  string         `json:"txId"`
	Index uint64         `json:"index"`
}

// TxOut is a chainstate coin together with its outpoint.
type TxOut struct {
	txID  []byte
	index uint64
	coin  *Coin
}

func NewTxOut() *TxOut {
	return &TxOut{
		coin: NewCoin(),
	}
}

func (t *TxOut) GetCoin() *Coin {
	return t.coin
}

// GetTxID returns the txid in the byte order nodes print it.
func (t *TxOut) GetTxID() string {
	return hex.EncodeToString(t.txID)
}

func (t *TxOut) Index() uint64 {
	return t.index
}

func (t *TxOut) MarshalJSON() ([]byte, error) {
	coin := t.GetCoin()

	return json.Marshal(&txOutMarshaled{
		Coin: &coinMarshaled{
			Output:     coin.GetOut(),
			Height:     coin.BlockHeight(),
			IsCoinbase: coin.IsCoinbase(),
		},
		TxID:  t.GetTxID(),
		Index: t.index,
	})
}

// Deserialize reads the outpoint part of a chainstate key (without the 'C'
// prefix) followed by the deobfuscated coin.
func (t *TxOut) Deserialize(r BytesBuffer) error {
	txID := make([]byte, 32)
	if _, err := io.ReadFull(r, txID); err != nil {
		return fmt.Errorf("read txID error: %w", err)
	}

	t.txID = binaryutils.ReverseBytesWithCopy(txID)

	index, _, err := binaryutils.DeserializeVLQ(r)
	if err != nil {
		return fmt.Errorf("read index error: %w", err)
	}

	t.index = index

	return t.coin.Deserialize(r)
}
