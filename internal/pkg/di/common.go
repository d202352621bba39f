package di

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoinconfig"
	"github.com/ciricc/btc-address-indexer/internal/pkg/logger"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultConfigFilePath = "config/config.yml"

func NewConfig(_ *do.Injector) (*config.Config, error) {
	configFilePath := defaultConfigFilePath

	configFilePathFromEnv := os.Getenv("CONFIG_FILE")
	if configFilePathFromEnv != "" {
		configFilePath = configFilePathFromEnv
	}

	var cfg config.Config
	if err := config.LoadServiceConfig(&cfg, configFilePath); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	return &cfg, nil
}

func NewLogger(i *do.Injector) (*zerolog.Logger, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("invoke config error: %w", err)
	}

	log := logger.NewLogger(cfg)

	return &log, nil
}

// NewShutdowner collects the resources opened by the other constructors.
func NewShutdowner(_ *do.Injector) (*shutdown.Shutdowner, error) {
	return shutdown.NewShutdowner(), nil
}

func NewUniversalBitcoinRESTClient(i *do.Injector) (*restclient.RESTClient, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	nodeURL, err := url.Parse(cfg.BlockchainNode.RestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse blockchain node rest url: %w", err)
	}

	restClient, err := restclient.New(nodeURL, &restclient.RESTClientOptions{
		RequestTimeout:    cfg.BlockchainNode.RequestTimeout,
		RequestsPerSecond: cfg.BlockchainNode.RequestsPerSecond,
		Transport:         otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rest client: %w", err)
	}

	return restClient, nil
}

// NewBitcoinConfig takes the chain from the configuration, or asks the node when it is not set.
func NewBitcoinConfig(i *do.Injector) (*bitcoinconfig.BitcoinConfig, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	params := cfg.BlockchainParams

	if params.Chain != "" {
		btcConfig, err := bitcoinconfig.NewFromChainName(params.Chain, params.Decimals, params.BlockGenerationInterval)
		if err != nil {
			return nil, fmt.Errorf("failed to create bitcoin config: %w", err)
		}

		return btcConfig, nil
	}

	restClient, err := do.Invoke[*restclient.RESTClient](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke rest client: %w", err)
	}

	ctx, cancel := startupContext()
	defer cancel()

	btcConfig, err := bitcoinconfig.New(ctx, restClient, params.Decimals, params.BlockGenerationInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create bitcoin config: %w", err)
	}

	return btcConfig, nil
}
