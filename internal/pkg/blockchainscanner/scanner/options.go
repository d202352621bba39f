package scanner

import (
	"time"

	"github.com/rs/zerolog"
)

type ScannerOption func(*ScannerOptions) error

type ScannerOptions struct {
	waitAfterErrorDuration time.Duration
	scanInterval           time.Duration

	logger *zerolog.Logger
}

// WithScanInterval sets the pause before a new iteration when the previous one ended by itself.
func WithScanInterval(duration time.Duration) ScannerOption {
	return func(so *ScannerOptions) error {
		if duration < 0 {
			return ErrInvalidDuration
		}

		so.scanInterval = duration

		return nil
	}
}

func WithWaitAfterErrorDuration(duration time.Duration) ScannerOption {
	return func(o *ScannerOptions) error {
		if duration < 0 {
			return ErrInvalidDuration
		}

		o.waitAfterErrorDuration = duration

		return nil
	}
}

func WithLogger(logger *zerolog.Logger) ScannerOption {
	return func(o *ScannerOptions) error {
		o.logger = logger

		return nil
	}
}

func buildOptions(opts ...ScannerOption) (*ScannerOptions, error) {
	options := &ScannerOptions{
		logger:                 zerolog.DefaultContextLogger,
		waitAfterErrorDuration: time.Second * 5,
		scanInterval:           time.Second * 30,
	}

	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if options.logger == nil {
		nop := zerolog.Nop()
		options.logger = &nop
	}

	return options, nil
}
