package mempool

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultFetchConcurrency = 8
	DefaultCacheTTL         = 10 * time.Minute
)

type OracleOptions struct {
	logger           *zerolog.Logger
	fetchConcurrency int
	cacheTTL         time.Duration
	cacheCapacity    uint64
}

type OracleOption func(*OracleOptions) error

func WithLogger(logger *zerolog.Logger) OracleOption {
	return func(o *OracleOptions) error {
		o.logger = logger

		return nil
	}
}

// WithFetchConcurrency limits parallel transaction downloads.
func WithFetchConcurrency(n int) OracleOption {
	return func(o *OracleOptions) error {
		if n <= 0 {
			return ErrInvalidConcurrency
		}

		o.fetchConcurrency = n

		return nil
	}
}

// WithCache sets how long fetched transactions are kept and how many of them.
// Zero capacity means no limit.
func WithCache(ttl time.Duration, capacity uint64) OracleOption {
	return func(o *OracleOptions) error {
		if ttl <= 0 {
			return ErrInvalidCacheTTL
		}

		o.cacheTTL = ttl
		o.cacheCapacity = capacity

		return nil
	}
}

func buildOptions(opts ...OracleOption) (*OracleOptions, error) {
	options := &OracleOptions{
		logger:           zerolog.DefaultContextLogger,
		fetchConcurrency: DefaultFetchConcurrency,
		cacheTTL:         DefaultCacheTTL,
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
