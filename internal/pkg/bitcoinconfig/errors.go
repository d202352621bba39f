package bitcoinconfig

import "errors"

var (
	ErrUnknownChain    = errors.New("unknown chain")
	ErrInvalidDecimals = errors.New("invalid decimals")
)
