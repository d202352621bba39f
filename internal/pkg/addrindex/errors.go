package addrindex

import "errors"

var (
	ErrMalformedKey        = errors.New("malformed index key")
	ErrMalformedValue      = errors.New("malformed index value")
	ErrStoreRead           = errors.New("index store read failed")
	ErrNoOutputsForAddress = errors.New("address has no outputs")
	ErrAddressDecode       = errors.New("failed to decode address")
	ErrNoMempoolOracle     = errors.New("mempool oracle is not configured")
	ErrNilStore            = errors.New("store is nil")
	ErrNilSpentOracle      = errors.New("spent oracle is nil")
	ErrNilBitcoinConfig    = errors.New("bitcoin config is nil")
	ErrInvalidConcurrency  = errors.New("concurrency must be positive")
	ErrInvalidBlock        = errors.New("invalid block")
)
