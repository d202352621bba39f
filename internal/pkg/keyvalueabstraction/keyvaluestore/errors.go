package keyvaluestore

import "errors"

var ErrUnknownOperation = errors.New("unknown operation type")
