package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/app"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexer"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexevents"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

const inMemoryConfig = `
name: btc-address-indexer
version: 1.0.0
env: dev
blockchainNode:
  restURL: http://127.0.0.1:18443/rest
blockchainParams:
  chain: regtest
storage:
  type: inmemory
`

func TestProvideAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(inMemoryConfig), 0o600))
	t.Setenv("CONFIG_FILE", path)

	i := do.New()
	require.NoError(t, app.ProvideAll(i))

	ix, err := do.Invoke[*indexer.Indexer](i)
	require.NoError(t, err)

	_, found, err := ix.Tip(context.Background())
	require.NoError(t, err)
	require.False(t, found)

	module, err := do.Invoke[*addrindex.Module](i)
	require.NoError(t, err)

	_, err = module.GetOutputs(context.Background(), "mpXwg4jMtRhuSpVq4xS3HFHmCmWp9NyGKt", false)
	require.NoError(t, err)

	publisher, err := do.Invoke[indexevents.Publisher](i)
	require.NoError(t, err)
	require.IsType(t, indexevents.NopPublisher{}, publisher)

	_, err = do.Invoke[keyvaluestore.BatchWriter](i)
	require.NoError(t, err)

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	require.NoError(t, err)
	require.NoError(t, shutdowner.Shutdown(context.Background()))
}
