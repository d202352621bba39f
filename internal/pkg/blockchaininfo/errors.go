package blockchaininfo

import "errors"

var ErrInvalidRefreshInterval = errors.New("invalid refresh interval")
