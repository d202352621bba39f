package inmemorykvstore

import "errors"

var (
	ErrAlreadyClosed   = errors.New("already closed")
	ErrInvalidInterval = errors.New("persistence interval must be positive")
	ErrNoBatch         = errors.New("transaction has no batch")
)
