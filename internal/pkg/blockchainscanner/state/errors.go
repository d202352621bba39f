package state

import "errors"

var (
	ErrNilStore     = errors.New("store is nil")
	ErrMalformedTip = errors.New("malformed tip record")
)
