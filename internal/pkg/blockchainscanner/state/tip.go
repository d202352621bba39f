package state

import (
	"context"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/encoding"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
)

// TipKey sorts after every "outs-" key and never collides with them.
const TipKey = "tip"

// Tip is the last block whose operations were committed to the index.
type Tip struct {
	Hash     string `msgpack:"hash" json:"hash"`
	PrevHash string `msgpack:"prev_hash" json:"prevHash"`
	Height   int64  `msgpack:"height" json:"height"`
}

type TipStore struct {
	store keyvaluestore.Reader
	codec encoding.Codec
}

func NewTipStore(store keyvaluestore.Reader) (*TipStore, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	return &TipStore{
		store: store,
		codec: encoding.MsgPack,
	}, nil
}

// Get returns the current tip. found is false for an empty index.
func (s *TipStore) Get(ctx context.Context) (tip *Tip, found bool, err error) {
	data, found, err := s.store.Get(ctx, TipKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get tip: %w", err)
	}

	if !found {
		return nil, false, nil
	}

	tip = &Tip{}
	if err := s.codec.Unmarshal(data, tip); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMalformedTip, err)
	}

	return tip, true, nil
}

// PutOperation builds the write that moves the tip. It is meant to be
// committed in the same batch as the block's index operations.
func (s *TipStore) PutOperation(tip Tip) (keyvaluestore.Operation, error) {
	data, err := s.codec.Marshal(tip)
	if err != nil {
		return keyvaluestore.Operation{}, fmt.Errorf("failed to encode tip: %w", err)
	}

	return keyvaluestore.PutOperation(TipKey, data), nil
}

func (s *TipStore) DeleteOperation() keyvaluestore.Operation {
	return keyvaluestore.DeleteOperation(TipKey)
}
