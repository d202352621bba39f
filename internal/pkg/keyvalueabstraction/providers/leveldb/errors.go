package leveldbkvstore

import "errors"

var (
	ErrNilDB    = errors.New("leveldb is nil")
	ErrTxClosed = errors.New("transaction is already closed")
)
