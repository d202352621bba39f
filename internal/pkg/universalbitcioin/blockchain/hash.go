package blockchain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash is a block hash or a transaction id in the byte order the node prints it
type Hash []byte

func (h Hash) String() string {
	return hex.EncodeToString(h)
}

func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(v []byte) error {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return err
	}

	if s == "" {
		*h = nil

		return nil
	}

	hash, err := NewHashFromHEX(s)
	if err != nil {
		return fmt.Errorf("failed to unmarshal hash: %w", err)
	}

	*h = hash

	return nil
}

func MustHashFromHEX(encodedHash string) Hash {
	hash, err := NewHashFromHEX(encodedHash)
	if err != nil {
		panic(err)
	}

	return hash
}

func NewHashFromHEX(encodedHash string) (Hash, error) {
	hashBytes, err := hex.DecodeString(encodedHash)
	if err != nil {
		return nil, err
	}

	return hashBytes, nil
}
