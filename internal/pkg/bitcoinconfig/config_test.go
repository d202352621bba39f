package bitcoinconfig

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/stretchr/testify/require"
)

type fakeInfoClient struct {
	info *blockchain.BlockchainInfo
	err  error
}

func (f fakeInfoClient) GetBlockchainInfo(context.Context) (*blockchain.BlockchainInfo, error) {
	return f.info, f.err
}

func TestNewFromChainName(t *testing.T) {
	cases := []struct {
		chain string
		want  *chaincfg.Params
	}{
		{chain: "main", want: &chaincfg.MainNetParams},
		{chain: "mainnet", want: &chaincfg.MainNetParams},
		{chain: "test", want: &chaincfg.TestNet3Params},
		{chain: "regtest", want: &chaincfg.RegressionNetParams},
		{chain: "signet", want: &chaincfg.SigNetParams},
	}

	for _, tc := range cases {
		t.Run(tc.chain, func(t *testing.T) {
			cfg, err := NewFromChainName(tc.chain, 8, 10*time.Minute)
			require.NoError(t, err)
			require.Equal(t, tc.want.Name, cfg.GetParams().Name)
			require.Equal(t, 8, cfg.GetDecimals())
			require.Equal(t, 10*time.Minute, cfg.GetBlockGenerationInterval())
		})
	}
}

func TestNewFromChainNameErrors(t *testing.T) {
	_, err := NewFromChainName("dogecoin", 8, 0)
	require.ErrorIs(t, err, ErrUnknownChain)

	_, err = NewFromChainName("main", -1, 0)
	require.ErrorIs(t, err, ErrInvalidDecimals)
}

func TestNewAsksNode(t *testing.T) {
	cfg, err := New(context.Background(), fakeInfoClient{info: &blockchain.BlockchainInfo{Chain: "regtest"}}, 8, time.Minute)
	require.NoError(t, err)
	require.Equal(t, chaincfg.RegressionNetParams.Name, cfg.GetParams().Name)

	nodeErr := errors.New("node down")

	_, err = New(context.Background(), fakeInfoClient{err: nodeErr}, 8, time.Minute)
	require.ErrorIs(t, err, nodeErr)
}
