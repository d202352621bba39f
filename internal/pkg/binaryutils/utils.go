package binaryutils

import (
	"errors"
	"io"
)

// MaxVLQSize is the longest VLQ encoding of a uint64.
const MaxVLQSize = 10

var ErrVLQOverflow = errors.New("vlq overflows uint64")

// DeserializeVLQ reads a variable-length quantity in the format Bitcoin Core
// calls VARINT: base-128, most significant group first, with one subtracted
// from every group but the last. It returns the value and the bytes read.
func DeserializeVLQ(buf io.ByteReader) (uint64, int, error) {
	var n uint64
	var size int

	for {
		val, err := buf.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return 0, size, err
		}

		size++
		if size > MaxVLQSize {
			return 0, size, ErrVLQOverflow
		}

		n = (n << 7) | uint64(val&0x7F)
		if val&0x80 != 0x80 {
			return n, size, nil
		}

		n++
	}
}

// SerializeVLQ is the inverse of DeserializeVLQ.
func SerializeVLQ(n uint64) []byte {
	var tmp [MaxVLQSize]byte

	i := 0

	for {
		b := byte(n & 0x7F)
		if i > 0 {
			b |= 0x80
		}

		tmp[i] = b

		if n <= 0x7F {
			break
		}

		n = (n >> 7) - 1
		i++
	}

	out := make([]byte, i+1)
	for j := range out {
		out[j] = tmp[i-j]
	}

	return out
}

func ReverseBytesWithCopy(input []byte) []byte {
	temp := make([]byte, len(input))
	copy(temp, input)
	for i, j := 0, len(temp)-1; i < j; i, j = i+1, j-1 {
		temp[i], temp[j] = temp[j], temp[i]
	}
	return temp
}
