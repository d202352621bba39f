package rediskvstore

import "errors"

var (
	ErrInvalidPageSize     = errors.New("page size must be positive")
	ErrUnexpectedValueType = errors.New("unexpected value type")
)
