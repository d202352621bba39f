package bitcoinconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
)

type BitcoinConfig struct {
	params                  *chaincfg.Params
	decimals                int
	blockGenerationInterval time.Duration
}

type BitcoinRESTClient interface {
	GetBlockchainInfo(ctx context.Context) (*blockchain.BlockchainInfo, error)
}

// New asks the node which chain it follows and builds the config for it.
func New(
	ctx context.Context,
	btcClient BitcoinRESTClient,
	decimals int,
	blockGenerationInterval time.Duration,
) (*BitcoinConfig, error) {
	bcInfo, err := btcClient.GetBlockchainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockchain info: %w", err)
	}

	return NewFromChainName(bcInfo.Chain, decimals, blockGenerationInterval)
}

// NewFromChainName accepts both the node's chain names (main, test, regtest, signet)
// and the btcd network names (mainnet, testnet3, ...).
func NewFromChainName(
	chain string,
	decimals int,
	blockGenerationInterval time.Duration,
) (*BitcoinConfig, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}

	params, ok := paramsByChain(chain)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, chain)
	}

	return &BitcoinConfig{
		params:                  params,
		decimals:                decimals,
		blockGenerationInterval: blockGenerationInterval,
	}, nil
}

func paramsByChain(chain string) (*chaincfg.Params, bool) {
	aliases := map[string]*chaincfg.Params{
		"main":    &chaincfg.MainNetParams,
		"test":    &chaincfg.TestNet3Params,
		"regtest": &chaincfg.RegressionNetParams,
		"signet":  &chaincfg.SigNetParams,
	}

	if p, ok := aliases[chain]; ok {
		return p, true
	}

	for _, p := range []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNet3Params,
		&chaincfg.RegressionNetParams,
		&chaincfg.SimNetParams,
		&chaincfg.SigNetParams,
	} {
		if p.Name == chain {
			return p, true
		}
	}

	return nil, false
}

func (bc *BitcoinConfig) GetParams() *chaincfg.Params {
	return bc.params
}

func (bc *BitcoinConfig) GetDecimals() int {
	return bc.decimals
}

func (bc *BitcoinConfig) GetBlockGenerationInterval() time.Duration {
	return bc.blockGenerationInterval
}
