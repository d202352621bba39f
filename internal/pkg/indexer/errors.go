package indexer

import "errors"

var (
	ErrModuleExists        = errors.New("module with this name is already registered")
	ErrBlockAlreadyIndexed = errors.New("block is already the index tip")
	ErrChainMismatch       = errors.New("block does not extend the index tip")
	ErrNextBlockTooFar     = errors.New("block is not at the start height of an empty index")
	ErrEmptyIndex          = errors.New("index has no tip")
	ErrNilStore            = errors.New("store is nil")
	ErrNilBatchWriter      = errors.New("batch writer is nil")
	ErrNilBlockFetcher     = errors.New("block fetcher is nil")
	ErrInvalidStartHeight  = errors.New("invalid start height")
)
