package blockchain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAmountValue_Satoshis(t *testing.T) {
	testCases := []struct {
		raw      string
		expected uint64
		wantErr  bool
	}{
		{raw: `50.00000000`, expected: 5_000_000_000},
		{raw: `0.00005`, expected: 5000},
		{raw: `0`, expected: 0},
		{raw: `0.000000001`, wantErr: true},
		{raw: `-1`, wantErr: true},
	}

	for _, tc := range testCases {
		var out TransactionOutput

		require.NoError(t, json.Unmarshal([]byte(`{"n":0,"value":`+tc.raw+`}`), &out))

		sats, err := out.GetValue().Satoshis(8)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidAmount, tc.raw)
			require.Zero(t, sats, tc.raw)

			continue
		}

		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.expected, sats, tc.raw)
	}
}

func TestAmountValue_Nil(t *testing.T) {
	var a *AmountValue

	sats, err := a.Satoshis(8)
	require.NoError(t, err)
	require.Zero(t, sats)

	sats, err = NewAmountValue(decimal.RequireFromString("0.00000012")).Satoshis(8)
	require.NoError(t, err)
	require.Equal(t, uint64(12), sats)
}

func TestTransaction_IsCoinbase(t *testing.T) {
	var tx Transaction

	require.NoError(t, json.Unmarshal([]byte(`{
		"txid": "aa",
		"vin": [{"coinbase": "04ffff001d0104", "sequence": 4294967295}],
		"vout": [{"n": 0, "value": 50, "scriptPubKey": {"hex": "76a91400000000000000000000000000000000000000008aac"}}]
	}`), &tx))

	require.True(t, tx.IsCoinbase())

	script, err := tx.GetOutputs()[0].ScriptBytes()
	require.NoError(t, err)
	require.Len(t, script, 25)

	tx.VIn[0] = &TransactionInput{TxID: "bb", VOut: 1}
	require.False(t, tx.IsCoinbase())
}

func TestBlockHeader_Stale(t *testing.T) {
	var h BlockHeader

	require.NoError(t, json.Unmarshal([]byte(`{"hash":"00ff","confirmations":-1,"height":3,"time":1231006505}`), &h))
	require.True(t, h.IsStale())
	require.Equal(t, int64(1231006505000), h.GetTimeMillis())
	require.Equal(t, "00ff", h.GetHash().String())
}
