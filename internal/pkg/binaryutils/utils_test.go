package binaryutils

import (
	"bytes"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVLQVectors(t *testing.T) {
	// values from Bitcoin Core's serialization tests
	cases := []struct {
		n   uint64
		hex string
	}{
		{n: 0, hex: "00"},
		{n: 0x7f, hex: "7f"},
		{n: 0x80, hex: "8000"},
		{n: 0x1234, hex: "a334"},
		{n: 0xffff, hex: "82fe7f"},
		{n: 0x123456, hex: "c7e756"},
		{n: 0x80123456, hex: "86ffc7e756"},
		{n: 0xffffffff, hex: "8efefefe7f"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.hex, hex.EncodeToString(SerializeVLQ(tc.n)))

		raw, err := hex.DecodeString(tc.hex)
		require.NoError(t, err)

		n, size, err := DeserializeVLQ(bytes.NewReader(raw))
		require.NoError(t, err)
		require.Equal(t, tc.n, n)
		require.Equal(t, len(raw), size)
	}
}

func TestVLQRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint64().Draw(t, "n")
		encoded := SerializeVLQ(n)

		got, size, err := DeserializeVLQ(bytes.NewReader(encoded))
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.Equal(t, len(encoded), size)
	})
}

func TestDeserializeVLQTruncated(t *testing.T) {
	_, _, err := DeserializeVLQ(bytes.NewReader([]byte{0x80}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = DeserializeVLQ(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = DeserializeVLQ(bytes.NewReader(bytes.Repeat([]byte{0xff}, 11)))
	require.ErrorIs(t, err, ErrVLQOverflow)
}

func TestReverseBytesWithCopy(t *testing.T) {
	in := []byte{1, 2, 3}
	out := ReverseBytesWithCopy(in)

	require.Equal(t, []byte{3, 2, 1}, out)
	require.Equal(t, []byte{1, 2, 3}, in)
}
