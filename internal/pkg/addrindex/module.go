package addrindex

import (
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/rs/zerolog"
)

// ModuleName is the name the address index is registered under in the indexer.
const ModuleName = "address"

// Module indexes outputs by the address they pay to and answers address queries.
// It keeps no state between calls besides its dependencies.
type Module struct {
	store       keyvaluestore.Reader
	btcConfig   BitcoinConfig
	spentOracle SpentOracle
	mempool     MempoolOracle

	spentCheckConcurrency int

	logger *zerolog.Logger
}

func New(
	store keyvaluestore.Reader,
	btcConfig BitcoinConfig,
	spentOracle SpentOracle,
	opts ...ModuleOption,
) (*Module, error) {
	switch {
	case store == nil:
		return nil, ErrNilStore
	case btcConfig == nil:
		return nil, ErrNilBitcoinConfig
	case spentOracle == nil:
		return nil, ErrNilSpentOracle
	}

	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	logger := options.logger.With().Str("module", ModuleName).Logger()

	return &Module{
		store:                 store,
		btcConfig:             btcConfig,
		spentOracle:           spentOracle,
		mempool:               options.mempool,
		spentCheckConcurrency: options.spentCheckConcurrency,
		logger:                &logger,
	}, nil
}

func (m *Module) Name() string {
	return ModuleName
}

var _ API = (*Module)(nil)
