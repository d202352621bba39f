package addrindex

import (
	"github.com/rs/zerolog"
)

const DefaultSpentCheckConcurrency = 16

type ModuleOption func(*ModuleOptions) error

type ModuleOptions struct {
	logger                *zerolog.Logger
	mempool               MempoolOracle
	spentCheckConcurrency int
}

func WithLogger(logger *zerolog.Logger) ModuleOption {
	return func(o *ModuleOptions) error {
		o.logger = logger

		return nil
	}
}

// WithMempool enables includeMempool on output queries.
func WithMempool(mempool MempoolOracle) ModuleOption {
	return func(o *ModuleOptions) error {
		o.mempool = mempool

		return nil
	}
}

// WithSpentCheckConcurrency limits the number of spent checks running at once
// for a single GetUnspentOutputs call.
func WithSpentCheckConcurrency(n int) ModuleOption {
	return func(o *ModuleOptions) error {
		if n <= 0 {
			return ErrInvalidConcurrency
		}

		o.spentCheckConcurrency = n

		return nil
	}
}

func buildOptions(opts ...ModuleOption) (*ModuleOptions, error) {
	options := &ModuleOptions{
		logger:                zerolog.DefaultContextLogger,
		spentCheckConcurrency: DefaultSpentCheckConcurrency,
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
