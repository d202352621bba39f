package scanner

import "errors"

var (
	// ErrRestart is returned by a block handler to start iterating again from the state.
	ErrRestart = errors.New("scan restart requested")

	ErrNilIterator     = errors.New("blockchain iterator is nil")
	ErrNilState        = errors.New("scanner state is nil")
	ErrInvalidDuration = errors.New("invalid duration")
)
