package di

import (
	"fmt"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/inmemorykvstore"
	leveldbkvstore "github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/leveldb"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/providers/rediskvstore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/redisdebughooks"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/drivers/inmemorytx"
	leveldbtx "github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/drivers/leveldb"
	redistx "github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/drivers/redis"
	"github.com/ciricc/btc-address-indexer/internal/pkg/transactionmanager/txmanager"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

func NewIndexLevelDB(i *do.Injector) (*leveldb.DB, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	db, err := leveldb.OpenFile(cfg.Storage.LevelDB.Path, &opt.Options{
		WriteBuffer: 64 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb file: %w", err)
	}

	shutdowner.Add(shutdown.FromCloser(db))

	return db, nil
}

func NewLevelDBStore(i *do.Injector) (keyvaluestore.StoreWithTxManager[*leveldb.Transaction], error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	levelDB, err := do.Invoke[*leveldb.DB](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke leveldb: %w", err)
	}

	logger.Info().Str("filePath", cfg.Storage.LevelDB.Path).Msg("initializing leveldb address index")

	store, err := leveldbkvstore.NewLevelDBStore(levelDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create leveldb store: %w", err)
	}

	return store, nil
}

func NewLevelDBTxManager(i *do.Injector) (*txmanager.TransactionManager[*leveldb.Transaction], error) {
	levelDB, err := do.Invoke[*leveldb.DB](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke leveldb: %w", err)
	}

	return txmanager.New(leveldbtx.NewLevelDBTransactionFactory(levelDB)), nil
}

func NewRedisClient(i *do.Injector) (*redis.Client, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("invoke config error: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.Redis.Host,
		Username: cfg.Storage.Redis.Username,
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})

	if cfg.Storage.Redis.Debug {
		client.AddHook(redisdebughooks.NewZerologRedisHook(logger))
	}

	shutdowner.Add(shutdown.FromCloser(client))

	return client, nil
}

func NewRedisKeyValueStore(i *do.Injector) (keyvaluestore.StoreWithTxManager[redis.Pipeliner], error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	client, err := do.Invoke[*redis.Client](i)
	if err != nil {
		return nil, fmt.Errorf("invoke redis error: %w", err)
	}

	logger.Info().Str("redisHost", cfg.Storage.Redis.Host).Msg("initializing redis address index")

	var opts []rediskvstore.StoreOption
	if cfg.Storage.Redis.Namespace != "" {
		opts = append(opts, rediskvstore.WithNamespace(cfg.Storage.Redis.Namespace))
	}

	if cfg.Storage.Redis.PageSize > 0 {
		opts = append(opts, rediskvstore.WithPageSize(cfg.Storage.Redis.PageSize))
	}

	store, err := rediskvstore.New(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store: %w", err)
	}

	return store, nil
}

func NewRedisTxManager(i *do.Injector) (*txmanager.TransactionManager[redis.Pipeliner], error) {
	client, err := do.Invoke[*redis.Client](i)
	if err != nil {
		return nil, fmt.Errorf("redis invoke error: %w", err)
	}

	return txmanager.New(redistx.NewRedisTransactionFactory(client)), nil
}

func NewInMemoryStore(i *do.Injector) (*inmemorykvstore.Store, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("invoke config error: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	opts := []inmemorykvstore.StoreOption{
		inmemorykvstore.WithPersistencePath(cfg.Storage.InMemory.PersistenceFilePath),
	}

	if cfg.Storage.InMemory.PersistenceInterval > 0 {
		opts = append(opts, inmemorykvstore.WithPersistenceInterval(cfg.Storage.InMemory.PersistenceInterval))
	}

	store, err := inmemorykvstore.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	shutdowner.Add(shutdown.FromCloser(store))

	return store, nil
}

func NewKeyValueInMemoryStore(i *do.Injector) (keyvaluestore.StoreWithTxManager[*inmemorykvstore.Batch], error) {
	store, err := do.Invoke[*inmemorykvstore.Store](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke in-memory store: %w", err)
	}

	return store, nil
}

func NewInMemoryTxManager(i *do.Injector) (*txmanager.TransactionManager[*inmemorykvstore.Batch], error) {
	store, err := do.Invoke[*inmemorykvstore.Store](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke in-memory store: %w", err)
	}

	return txmanager.New(inmemorytx.NewInMemoryTransactionFactory(store)), nil
}

// GetStoreReaderConstructor exposes the store of the backend T to the readers of the index.
func GetStoreReaderConstructor[T any]() do.Provider[keyvaluestore.Reader] {
	return func(i *do.Injector) (keyvaluestore.Reader, error) {
		store, err := do.Invoke[keyvaluestore.StoreWithTxManager[T]](i)
		if err != nil {
			return nil, fmt.Errorf("invoke key value store error: %w", err)
		}

		return store, nil
	}
}

// GetBatchWriterConstructor commits index batches through the transaction manager of the backend T.
func GetBatchWriterConstructor[T any]() do.Provider[keyvaluestore.BatchWriter] {
	return func(i *do.Injector) (keyvaluestore.BatchWriter, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke configuration: %w", err)
		}

		store, err := do.Invoke[keyvaluestore.StoreWithTxManager[T]](i)
		if err != nil {
			return nil, fmt.Errorf("invoke key value store error: %w", err)
		}

		txManager, err := do.Invoke[*txmanager.TransactionManager[T]](i)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke transaction manager: %w", err)
		}

		var settings []txmanager.Option
		if cfg.Transaction.Timeout > 0 {
			settings = append(settings, txmanager.WithTimeout(cfg.Transaction.Timeout))
		}

		return keyvaluestore.NewTxBatchWriter(store, txManager, txmanager.NewSettings(settings...)), nil
	}
}
