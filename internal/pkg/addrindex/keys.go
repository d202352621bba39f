package addrindex

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	outputsKeyPrefix = "outs"
	keyDelimiter     = "-"
	valueDelimiter   = ":"

	// rangeSentinel sorts after the delimiter and every hex digit
	rangeSentinel = "~"

	// timestampWidth keeps millisecond timestamps below 10^13 in numeric order
	timestampWidth = 13
)

// OutputKey is the decoded form of
// outs-<addressHashHex>-<timestampMillis>-<txidHex>-<outputIndex>.
type OutputKey struct {
	AddressHash AddressHash
	Timestamp   uint64
	TxID        []byte
	OutputIndex uint32
}

// OutputValue is the decoded form of <satoshis>:<scriptHex>:<blockHeight>.
type OutputValue struct {
	Satoshis uint64
	Script   []byte
	Height   uint64
}

func EncodeKey(k *OutputKey) string {
	return fmt.Sprintf(
		"%s%s%s%s%0*d%s%s%s%d",
		outputsKeyPrefix, keyDelimiter,
		k.AddressHash, keyDelimiter,
		timestampWidth, k.Timestamp, keyDelimiter,
		hex.EncodeToString(k.TxID), keyDelimiter,
		k.OutputIndex,
	)
}

func DecodeKey(key string) (*OutputKey, error) {
	parts := strings.Split(key, keyDelimiter)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: %q has %d fields", ErrMalformedKey, key, len(parts))
	}

	if parts[0] != outputsKeyPrefix {
		return nil, fmt.Errorf("%w: %q has unknown prefix", ErrMalformedKey, key)
	}

	hash, err := hex.DecodeString(parts[1])
	if err != nil || len(hash) != AddressHashSize {
		return nil, fmt.Errorf("%w: %q has invalid address hash", ErrMalformedKey, key)
	}

	timestamp, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q has invalid timestamp: %w", ErrMalformedKey, key, err)
	}

	txID, err := hex.DecodeString(parts[3])
	if err != nil || len(txID) == 0 {
		return nil, fmt.Errorf("%w: %q has invalid txid", ErrMalformedKey, key)
	}

	index, err := strconv.ParseUint(parts[4], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q has invalid output index: %w", ErrMalformedKey, key, err)
	}

	k := &OutputKey{
		Timestamp:   timestamp,
		TxID:        txID,
		OutputIndex: uint32(index),
	}

	copy(k.AddressHash[:], hash)

	return k, nil
}

func EncodeValue(v *OutputValue) string {
	return strings.Join([]string{
		strconv.FormatUint(v.Satoshis, 10),
		hex.EncodeToString(v.Script),
		strconv.FormatUint(v.Height, 10),
	}, valueDelimiter)
}

func DecodeValue(value string) (*OutputValue, error) {
	parts := strings.Split(value, valueDelimiter)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q has %d fields", ErrMalformedValue, value, len(parts))
	}

	satoshis, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid satoshis: %w", ErrMalformedValue, err)
	}

	script, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid script: %w", ErrMalformedValue, err)
	}

	height, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid height: %w", ErrMalformedValue, err)
	}

	return &OutputValue{
		Satoshis: satoshis,
		Script:   script,
		Height:   height,
	}, nil
}

// AddressRange returns the half-open key range holding every output of the address.
func AddressRange(hash AddressHash) (start, end string) {
	start = outputsKeyPrefix + keyDelimiter + hash.String()

	return start, start + rangeSentinel
}
