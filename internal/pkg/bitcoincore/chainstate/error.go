package chainstate

import "errors"

var (
	ErrNoKeysMore            = errors.New("no more keys")
	ErrNotFound              = errors.New("not found")
	ErrInvalidObfuscationKey = errors.New("invalid obfuscation key format")
	ErrInvalidTxID           = errors.New("invalid txid")
)
