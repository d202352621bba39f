package chainstate

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ciricc/btc-address-indexer/internal/pkg/binaryutils"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/utxo"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	coinKeyPrefix      = 'C'
	bestBlockKeyPrefix = 'B'
)

type LevelDB interface {
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// DB reads a copy of Bitcoin Core's chainstate directory. Core must not
// be running on the same directory.
type DB struct {
	ldb          LevelDB
	deobfuscator *ChainstateDeobfuscator
}

func NewDB(ldb LevelDB) (*DB, error) {
	deobfuscator, err := newDeobfuscator(ldb)
	if err != nil {
		return nil, fmt.Errorf("failed to create deobfuscator: %w", err)
	}

	return &DB{
		ldb:          ldb,
		deobfuscator: deobfuscator,
	}, nil
}

// NewUTXOIterator walks every coin of the chainstate.
func (d *DB) NewUTXOIterator() *UTXOIterator {
	ldbIterator := d.ldb.NewIterator(util.BytesPrefix([]byte{coinKeyPrefix}), nil)

	return newUTXOIterator(ldbIterator, d.deobfuscator)
}

func (d *DB) GetDeobfuscator() *ChainstateDeobfuscator {
	return d.deobfuscator
}

// GetBlockHash returns the hash of the block the chainstate is synced to.
func (d *DB) GetBlockHash(ctx context.Context) ([]byte, error) {
	blockHash, err := d.ldb.Get([]byte{bestBlockKeyPrefix}, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get block hash: %w", err)
	}

	deobfuscatedBlockhash, err := d.deobfuscator.Deobfuscate(ctx, blockHash)
	if err != nil {
		return nil, fmt.Errorf("deobfuscate block hash error: %w", err)
	}

	return binaryutils.ReverseBytesWithCopy(deobfuscatedBlockhash), nil
}

// CoinKey builds the chainstate key of an outpoint:
// 'C', the txid in internal byte order, VARINT(vout).
func CoinKey(txID string, vout uint32) ([]byte, error) {
	txIDBytes, err := hex.DecodeString(txID)
	if err != nil || len(txIDBytes) != 32 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, txID)
	}

	key := make([]byte, 0, 1+32+binaryutils.MaxVLQSize)
	key = append(key, coinKeyPrefix)
	key = append(key, binaryutils.ReverseBytesWithCopy(txIDBytes)...)
	key = append(key, binaryutils.SerializeVLQ(uint64(vout))...)

	return key, nil
}

// GetCoin returns the unspent output, or ErrNotFound when it is spent or never existed.
func (d *DB) GetCoin(ctx context.Context, txID string, vout uint32) (*utxo.TxOut, error) {
	key, err := CoinKey(txID, vout)
	if err != nil {
		return nil, err
	}

	value, err := d.ldb.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get coin: %w", err)
	}

	return decodeCoin(ctx, d.deobfuscator, key, value)
}

// HasCoin reports whether the outpoint is in the chainstate.
func (d *DB) HasCoin(_ context.Context, txID string, vout uint32) (bool, error) {
	key, err := CoinKey(txID, vout)
	if err != nil {
		return false, err
	}

	found, err := d.ldb.Has(key, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check coin: %w", err)
	}

	return found, nil
}

func decodeCoin(ctx context.Context, deobfuscator Deobfuscator, key, obfuscatedValue []byte) (*utxo.TxOut, error) {
	value, err := deobfuscator.Deobfuscate(ctx, obfuscatedValue)
	if err != nil {
		return nil, fmt.Errorf("deobfuscate UTXO error: %w", err)
	}

	full := make([]byte, 0, len(key)-1+len(value))
	full = append(full, key[1:]...)
	full = append(full, value...)

	txOut := utxo.NewTxOut()
	if err := txOut.Deserialize(bytes.NewReader(full)); err != nil {
		return nil, fmt.Errorf("deserialize UTXO error: %w", err)
	}

	return txOut, nil
}
