package chainstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

type Deobfuscator interface {
	// Deobfuscate must return deobfuscated value
	Deobfuscate(ctx context.Context, value []byte) ([]byte, error)
}

// obfuscationKeyKey is "\x0e\x00obfuscate_key".
var obfuscationKeyKey = append([]byte{0x0e, 0x00}, []byte("obfuscate_key")...)

// ChainstateDeobfuscator xors values with the key Bitcoin Core writes into
// every chainstate. Old chainstates have no key and are stored as is.
type ChainstateDeobfuscator struct {
	obfuscationKey []byte
}

func newDeobfuscator(ldb LevelDB) (*ChainstateDeobfuscator, error) {
	obfuscationKey, err := ldb.Get(obfuscationKeyKey, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return &ChainstateDeobfuscator{}, nil
		}

		return nil, fmt.Errorf("failed to get obfuscation key: %w", err)
	}

	// the key is stored as a vector: its length byte and then the key
	if len(obfuscationKey) == 0 || int(obfuscationKey[0]) != len(obfuscationKey)-1 {
		return nil, ErrInvalidObfuscationKey
	}

	return &ChainstateDeobfuscator{
		obfuscationKey: obfuscationKey[1:],
	}, nil
}

func (cd *ChainstateDeobfuscator) ObfuscationKey() []byte {
	return cd.obfuscationKey
}

func (cd *ChainstateDeobfuscator) Deobfuscate(_ context.Context, value []byte) ([]byte, error) {
	if len(cd.obfuscationKey) == 0 {
		return value, nil
	}

	return deobfuscateValue(cd.obfuscationKey, value), nil
}

func deobfuscateValue(obfuscationKey, value []byte) []byte {
	deobfuscatedValue := make([]byte, len(value))

	for i, c := range value {
		deobfuscatedValue[i] = c ^ obfuscationKey[i%len(obfuscationKey)]
	}

	return deobfuscatedValue
}
