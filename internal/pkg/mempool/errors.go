package mempool

import "errors"

var (
	ErrNilClient          = errors.New("mempool client is nil")
	ErrNilBitcoinConfig   = errors.New("bitcoin config is nil")
	ErrInvalidConcurrency = errors.New("invalid fetch concurrency")
	ErrInvalidCacheTTL    = errors.New("invalid cache ttl")
)
