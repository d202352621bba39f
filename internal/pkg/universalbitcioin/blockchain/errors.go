package blockchain

import "errors"

var ErrInvalidAmount = errors.New("invalid amount")
