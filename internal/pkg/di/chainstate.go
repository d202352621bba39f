package di

import (
	"fmt"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/chainstate"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/samber/do"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ChainstateLevelDBName keeps the node's chainstate apart from the index leveldb in the container.
const ChainstateLevelDBName = "chainstate.leveldb"

// NewChainstateLevelDB opens a copy of Bitcoin Core's chainstate directory read-only.
func NewChainstateLevelDB(i *do.Injector) (*leveldb.DB, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke config: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	db, err := leveldb.OpenFile(cfg.BlockchainState.Path, &opt.Options{
		ReadOnly:       true,
		ErrorIfMissing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB: %w", err)
	}

	shutdowner.Add(shutdown.FromCloser(db))

	return db, nil
}

func NewChainstateDB(i *do.Injector) (*chainstate.DB, error) {
	chainstateLevelDB, err := do.InvokeNamed[*leveldb.DB](i, ChainstateLevelDBName)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke leveldb: %w", err)
	}

	db, err := chainstate.NewDB(chainstateLevelDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create chainstate db: %w", err)
	}

	return db, nil
}
