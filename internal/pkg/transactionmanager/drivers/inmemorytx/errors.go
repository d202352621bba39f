package inmemorytx

import "errors"

var (
	ErrNilStore      = errors.New("store is nil")
	ErrAlreadyClosed = errors.New("transaction already closed")
)
