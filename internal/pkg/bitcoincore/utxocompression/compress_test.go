package utxocompression

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecompressAmount(t *testing.T) {
	cases := []struct {
		compressed uint64
		amount     uint64
	}{
		{compressed: 0, amount: 0},
		{compressed: 1, amount: 1},
		{compressed: 7, amount: 1_000_000},
		{compressed: 9, amount: 100_000_000},
		{compressed: 50, amount: 5_000_000_000},
		{compressed: 80772, amount: 89750},
	}

	for _, tc := range cases {
		require.Equal(t, tc.amount, DecompressTxOutAmount(tc.compressed))
	}
}

func TestAmountRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amount := rapid.Uint64Range(0, 21_000_000*100_000_000).Draw(t, "amount")

		require.Equal(t, amount, DecompressTxOutAmount(CompressTxOutAmount(amount)))
	})
}

func TestDecompressScript(t *testing.T) {
	hash := "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"
	hashBytes, _ := hex.DecodeString(hash)

	script, err := DecompressScript(CstPayToPubKeyHash, hashBytes)
	require.NoError(t, err)
	require.Equal(t, "76a914"+hash+"88ac", hex.EncodeToString(script))

	script, err = DecompressScript(CstPayToScriptHash, hashBytes)
	require.NoError(t, err)
	require.Equal(t, "a914"+hash+"87", hex.EncodeToString(script))

	// uncompressed genesis pubkey, its y is odd so it is stored as type 5
	genesisX := "678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb6"
	compressed, _ := hex.DecodeString("05" + genesisX)

	script, err = DecompressScript(CstPayToPubKeyUncomp5, compressed)
	require.NoError(t, err)
	require.Equal(t,
		"4104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac",
		hex.EncodeToString(script),
	)

	raw := []byte{0x6a, 0x01, 0x02}
	script, err = DecompressScript(NumSpecialScripts+3, raw)
	require.NoError(t, err)
	require.Equal(t, raw, script)

	_, err = DecompressScript(CstPayToPubKeyHash, hashBytes[:10])
	require.ErrorIs(t, err, ErrInvalidCompressedScript)
}
