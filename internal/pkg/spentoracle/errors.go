package spentoracle

import "errors"

var (
	ErrNilClient        = errors.New("oracle backend is nil")
	ErrUnexpectedBitmap = errors.New("unexpected utxo bitmap")
)
