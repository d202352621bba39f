package indexer

import (
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexevents"
	"github.com/rs/zerolog"
)

type IndexerOptions struct {
	logger      *zerolog.Logger
	publisher   indexevents.Publisher
	metrics     *Metrics
	startHeight int64
}

type IndexerOption func(*IndexerOptions) error

func WithLogger(logger *zerolog.Logger) IndexerOption {
	return func(o *IndexerOptions) error {
		o.logger = logger

		return nil
	}
}

// WithPublisher sets where committed blocks are announced.
func WithPublisher(publisher indexevents.Publisher) IndexerOption {
	return func(o *IndexerOptions) error {
		o.publisher = publisher

		return nil
	}
}

func WithMetrics(metrics *Metrics) IndexerOption {
	return func(o *IndexerOptions) error {
		o.metrics = metrics

		return nil
	}
}

// WithStartHeight sets the first block an empty index accepts.
func WithStartHeight(height int64) IndexerOption {
	return func(o *IndexerOptions) error {
		if height < 0 {
			return ErrInvalidStartHeight
		}

		o.startHeight = height

		return nil
	}
}

func buildOptions(opts ...IndexerOption) (*IndexerOptions, error) {
	options := &IndexerOptions{
		logger:    zerolog.DefaultContextLogger,
		publisher: indexevents.NopPublisher{},
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

	if options.publisher == nil {
		options.publisher = indexevents.NopPublisher{}
	}

	return options, nil
}
