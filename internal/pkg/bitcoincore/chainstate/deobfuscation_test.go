package chainstate

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestDeobfuscateValue(t *testing.T) {
	testCases := []struct {
		obfuscationKey []byte
		value          []byte
		expectedValue  []byte
	}{
		{
			obfuscationKey: lo.Must(hex.DecodeString("27c78118b7316105")),
			value:          lo.Must(hex.DecodeString("26c326d7353661dc7005d274976f458691f24f0f05d141335f4ad5927e41")),
			expectedValue:  lo.Must(hex.DecodeString("0104a7cf820700d957c2536c205e2483b635ce17b2e02036788d548ac970")),
		},
		{
			obfuscationKey: []byte{0xff},
			value:          []byte{0x00, 0x0f},
			expectedValue:  []byte{0xff, 0xf0},
		},
	}

	for _, tc := range testCases {
		val := deobfuscateValue(tc.obfuscationKey, tc.value)
		require.Equal(t, hex.EncodeToString(tc.expectedValue), hex.EncodeToString(val))
	}
}

func TestDeobfuscatorWithoutKey(t *testing.T) {
	d := &ChainstateDeobfuscator{}

	v, err := d.Deobfuscate(context.Background(), []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, v)
}
