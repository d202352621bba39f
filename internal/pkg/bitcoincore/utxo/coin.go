package utxo

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/ciricc/btc-address-indexer/internal/pkg/binaryutils"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/utxocompression"
)

// MaxScriptSize is the consensus limit on script size.
const MaxScriptSize = 10000

type BytesBuffer interface {
	io.ByteScanner
	io.Reader
}

// Coin is an unspent output as Bitcoin Core keeps it in the chainstate.
type Coin struct {
	isCoinBase  bool
	blockHeight uint64

	out *wire.TxOut
}

func NewCoin() *Coin {
	return &Coin{}
}

func (c *Coin) GetOut() *wire.TxOut {
	return c.out
}

func (c *Coin) IsCoinbase() bool {
	return c.isCoinBase
}

// BlockHeight is the height of the block that created the output.
func (c *Coin) BlockHeight() uint64 {
	return c.blockHeight
}

// Deserialize reads VARINT(height*2 + coinbase), VARINT(compressed amount)
// and the compressed script.
func (c *Coin) Deserialize(coinBuffer BytesBuffer) error {
	code, _, err := binaryutils.DeserializeVLQ(coinBuffer)
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	c.blockHeight = code >> 1
	c.isCoinBase = code&1 == 1

	amount, _, err := binaryutils.DeserializeVLQ(coinBuffer)
	if err != nil {
		return fmt.Errorf("failed to read amount: %w", err)
	}

	scriptType, _, err := binaryutils.DeserializeVLQ(coinBuffer)
	if err != nil {
		return fmt.Errorf("failed to read script type: %w", err)
	}

	switch scriptType {
	case utxocompression.CstPayToPubKeyComp2,
		utxocompression.CstPayToPubKeyComp3,
		utxocompression.CstPayToPubKeyUncomp4,
		utxocompression.CstPayToPubKeyUncomp5:
		// the type byte is the first byte of the compressed pubkey
		if err := coinBuffer.UnreadByte(); err != nil {
			return fmt.Errorf("failed to unread script type: %w", err)
		}
	}

	scriptSize := utxocompression.ScriptSize(scriptType)
	if scriptSize > MaxScriptSize {
		return fmt.Errorf("%w: %d", ErrScriptTooLarge, scriptSize)
	}

	compressed := make([]byte, scriptSize)
	if _, err := io.ReadFull(coinBuffer, compressed); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	pkScript, err := utxocompression.DecompressScript(scriptType, compressed)
	if err != nil {
		return err
	}

	c.out = wire.NewTxOut(int64(utxocompression.DecompressTxOutAmount(amount)), pkScript)

	return nil
}
