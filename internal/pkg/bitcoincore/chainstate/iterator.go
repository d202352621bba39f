package chainstate

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/utxo"
	"github.com/syndtr/goleveldb/leveldb/iterator"
)

type UTXOIterator struct {
	iterator     iterator.Iterator
	deobfuscator Deobfuscator
}

func newUTXOIterator(
	iterator iterator.Iterator,
	deobf Deobfuscator,
) *UTXOIterator {
	return &UTXOIterator{
		iterator:     iterator,
		deobfuscator: deobf,
	}
}

// Next returns the next coin. ErrNoKeysMore is returned after the last one.
func (u *UTXOIterator) Next(ctx context.Context) (*utxo.TxOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !u.iterator.Next() {
		if err := u.iterator.Error(); err != nil {
			return nil, err
		}

		return nil, ErrNoKeysMore
	}

	return decodeCoin(ctx, u.deobfuscator, u.iterator.Key(), u.iterator.Value())
}

func (u *UTXOIterator) Release() {
	u.iterator.Release()
}
