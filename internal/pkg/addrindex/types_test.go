package addrindex

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestOutput_MarshalJSON(t *testing.T) {
	script := lo.Must(decodeHex(buildP2PKHScript(genesisPubKeyHash)))

	out := &Output{
		Address:     p2pkhAddress(t, genesisPubKeyHash),
		TxID:        txID(1),
		OutputIndex: 2,
		Satoshis:    5000,
		Script:      script,
		BlockHeight: MempoolHeight,
	}

	raw, err := json.Marshal([]*Output{out})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)

	require.Equal(t, buildP2PKHScript(genesisPubKeyHash), decoded[0]["script"])
	require.Equal(t, out.Address, decoded[0]["address"])
	require.Equal(t, txID(1), decoded[0]["txid"])
	require.EqualValues(t, 2, decoded[0]["outputIndex"])
	require.EqualValues(t, 5000, decoded[0]["satoshis"])
	require.EqualValues(t, -1, decoded[0]["blockHeight"])
}
