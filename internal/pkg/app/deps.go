package app

import (
	"fmt"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/di"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/syndtr/goleveldb/leveldb"
)

func ProvideCommonDeps(i *do.Injector) {
	do.Provide(i, di.NewConfig)
	do.Provide(i, di.NewLogger)
	do.Provide(i, di.NewShutdowner)
}

func ProvideBitcoinCoreDeps(i *do.Injector) {
	do.Provide(i, di.NewUniversalBitcoinRESTClient)
	do.Provide(i, di.NewBitcoinConfig)
	do.Provide(i, di.NewBitcoinBlocksIterator)
	do.Provide(i, di.NewBlockchainInfo)
}

func ProvideChainstateDeps(i *do.Injector) {
	do.ProvideNamed(i, di.ChainstateLevelDBName, di.NewChainstateLevelDB)
	do.Provide(i, di.NewChainstateDB)
}

// ProvideStoreDeps registers the index store of the configured storage type,
// exposed as keyvaluestore.Reader and keyvaluestore.BatchWriter.
func ProvideStoreDeps(i *do.Injector) error {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return fmt.Errorf("failed to invoke configuration: %w", err)
	}

	switch cfg.Storage.Type {
	case config.StorageRedis:
		do.Provide(i, di.NewRedisClient)
		do.Provide(i, di.NewRedisKeyValueStore)
		do.Provide(i, di.NewRedisTxManager)
		provideStoreAccess[redis.Pipeliner](i)
	case config.StorageInMemory:
		do.Provide(i, di.NewInMemoryStore)
		do.Provide(i, di.NewKeyValueInMemoryStore)
		do.Provide(i, di.NewInMemoryTxManager)
		provideStoreAccess[*inmemorykvstore.Batch](i)
	case config.StorageLevelDB:
		do.Provide(i, di.NewIndexLevelDB)
		do.Provide(i, di.NewLevelDBStore)
		do.Provide(i, di.NewLevelDBTxManager)
		provideStoreAccess[*leveldb.Transaction](i)
	default:
		return fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	return nil
}

func provideStoreAccess[T any](i *do.Injector) {
	do.Provide(i, di.GetStoreReaderConstructor[T]())
	do.Provide(i, di.GetBatchWriterConstructor[T]())
}

func ProvideAddressIndexDeps(i *do.Injector) {
	do.Provide(i, di.NewSpentOracle)
	do.Provide(i, di.NewMempoolOracle)
	do.Provide(i, di.NewAddressIndex)
}

func ProvideIndexerDeps(i *do.Injector) {
	do.Provide(i, di.NewKafkaSyncProducer)
	do.Provide(i, di.NewIndexEventsPublisher)
	do.Provide(i, di.NewPrometheusRegistry)
	do.Provide(i, di.NewIndexerMetrics)
	do.Provide(i, di.NewIndexer)
	do.Provide(i, di.NewBlockchainScanner)
}

func ProvideTransportDeps(i *do.Injector) {
	do.Provide(i, di.NewHealthGRPCHandlers)
	do.Provide(i, di.NewGRPCServer)
	do.Provide(i, di.NewMetricsServer)
}

// ProvideAll registers everything the daemon needs.
func ProvideAll(i *do.Injector) error {
	ProvideCommonDeps(i)
	ProvideBitcoinCoreDeps(i)
	ProvideChainstateDeps(i)

	if err := ProvideStoreDeps(i); err != nil {
		return err
	}

	ProvideAddressIndexDeps(i)
	ProvideIndexerDeps(i)
	ProvideTransportDeps(i)

	return nil
}
