package di

import (
	"fmt"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoinconfig"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/chainstate"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/mempool"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/spentoracle"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/rs/zerolog"
	"github.com/samber/do"
)

// NewSpentOracle picks the node's getutxos endpoint or the chainstate snapshot.
func NewSpentOracle(i *do.Injector) (addrindex.SpentOracle, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	switch cfg.AddressIndex.SpentSource {
	case config.SpentSourceChainstate:
		db, err := do.Invoke[*chainstate.DB](i)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke chainstate db: %w", err)
		}

		return spentoracle.NewChainstateOracle(db)
	default:
		restClient, err := do.Invoke[*restclient.RESTClient](i)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke rest client: %w", err)
		}

		return spentoracle.NewRESTOracle(restClient)
	}
}

func NewMempoolOracle(i *do.Injector) (*mempool.Oracle, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	restClient, err := do.Invoke[*restclient.RESTClient](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke rest client: %w", err)
	}

	btcConfig, err := do.Invoke[*bitcoinconfig.BitcoinConfig](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke bitcoin config: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	mempoolCfg := cfg.AddressIndex.Mempool

	opts := []mempool.OracleOption{mempool.WithLogger(logger)}

	if mempoolCfg.FetchConcurrency > 0 {
		opts = append(opts, mempool.WithFetchConcurrency(mempoolCfg.FetchConcurrency))
	}

	if mempoolCfg.CacheTTL > 0 {
		opts = append(opts, mempool.WithCache(mempoolCfg.CacheTTL, mempoolCfg.CacheCapacity))
	}

	oracle, err := mempool.New(restClient, btcConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mempool oracle: %w", err)
	}

	shutdowner.Add(shutdown.FromStopper(oracle.Close))

	return oracle, nil
}

func NewAddressIndex(i *do.Injector) (*addrindex.Module, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	store, err := do.Invoke[keyvaluestore.Reader](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke store: %w", err)
	}

	btcConfig, err := do.Invoke[*bitcoinconfig.BitcoinConfig](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke bitcoin config: %w", err)
	}

	spentOracle, err := do.Invoke[addrindex.SpentOracle](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke spent oracle: %w", err)
	}

	opts := []addrindex.ModuleOption{addrindex.WithLogger(logger)}

	if cfg.AddressIndex.SpentCheckConcurrency > 0 {
		opts = append(opts, addrindex.WithSpentCheckConcurrency(cfg.AddressIndex.SpentCheckConcurrency))
	}

	if cfg.AddressIndex.Mempool.Enabled {
		mempoolOracle, err := do.Invoke[*mempool.Oracle](i)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke mempool oracle: %w", err)
		}

		opts = append(opts, addrindex.WithMempool(mempoolOracle))
	}

	module, err := addrindex.New(store, btcConfig, spentOracle, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create address index: %w", err)
	}

	return module, nil
}
