package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Scanner[B any] struct {
	opts *ScannerOptions
	bi   BlockchainIterator[B]

	state ScannerState
}

type BlockchainIterator[B any] interface {
	// Iterate returns a channel with blocks. The channel is closed when ctx is done
	// or when the iterator needs the consumer to start over.
	Iterate(context.Context, string) (<-chan B, error)
}

type ScannerState interface {
	// GetLastScannedBlockHash returns the hash the next iteration starts from
	GetLastScannedBlockHash(context.Context) (string, error)
}

func NewScannerWithState[B any](
	blockchainIterator BlockchainIterator[B],
	state ScannerState,
	opts ...ScannerOption,
) (*Scanner[B], error) {
	if blockchainIterator == nil {
		return nil, ErrNilIterator
	}

	if state == nil {
		return nil, ErrNilState
	}

	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Scanner[B]{
		opts:  options,
		bi:    blockchainIterator,
		state: state,
	}, nil
}

// Start feeds blocks to handleBlock until ctx is done. A failed block is retried
// after the wait duration. A handler returning ErrRestart makes the scanner
// drop the current iteration and start a new one from the state.
func (s *Scanner[B]) Start(
	ctx context.Context,
	handleBlock func(ctx context.Context, block B) error,
) error {
	defer s.opts.logger.Info().Ctx(ctx).Msg("scanner stopped")

	for ctx.Err() == nil {
		err := s.scan(ctx, handleBlock)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Scanner[B]) scan(
	ctx context.Context,
	handleBlock func(ctx context.Context, block B) error,
) error {
	fromBlockHash, err := s.state.GetLastScannedBlockHash(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		s.opts.logger.Error().Err(err).Msg("failed to get last scanned block hash")

		sleep(ctx, s.opts.waitAfterErrorDuration)

		return nil
	}

	s.opts.logger.Info().
		Ctx(ctx).
		Str("fromBlockHash", fromBlockHash).
		Msg("start scanning")

	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	blocks, err := s.bi.Iterate(iterCtx, fromBlockHash)
	if err != nil {
		return fmt.Errorf("failed to get blockchain items from iterator: %w", err)
	}

	for block := range blocks {
		for {
			err := handleBlock(ctx, block)
			if err == nil {
				break
			}

			if errors.Is(err, ErrRestart) {
				s.opts.logger.Info().Err(err).Msg("restarting scan")

				return nil
			}

			if ctx.Err() != nil {
				return nil
			}

			s.opts.logger.Error().
				Dur("waitFor", s.opts.waitAfterErrorDuration).
				Err(err).
				Msg("failed to handle new block")

			if !sleep(ctx, s.opts.waitAfterErrorDuration) {
				return nil
			}
		}
	}

	// the iterator closed the channel on its own, give the node some time
	sleep(ctx, s.opts.scanInterval)

	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
