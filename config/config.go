package config

import (
	"fmt"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/deploy"
	"github.com/go-ozzo/ozzo-validation/is"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

const (
	StorageLevelDB  = "leveldb"
	StorageRedis    = "redis"
	StorageInMemory = "inmemory"

	SpentSourceREST       = "rest"
	SpentSourceChainstate = "chainstate"
)

type Config struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"env"`
	LogLevel    string `koanf:"logLevel"`

	BlockchainNode struct {
		RestURL           string        `koanf:"restURL"`
		RequestsPerSecond float64       `koanf:"requestsPerSecond"`
		RequestTimeout    time.Duration `koanf:"requestTimeout"`
	} `koanf:"blockchainNode"`

	BlockchainParams struct {
		// Chain is taken from the node when empty
		Chain                   string        `koanf:"chain"`
		Decimals                int           `koanf:"decimals"`
		BlockGenerationInterval time.Duration `koanf:"blockGenerationInterval"`
		InfoRefreshInterval     time.Duration `koanf:"infoRefreshInterval"`
	} `koanf:"blockchainParams"`

	BlockchainState struct {
		Path string `koanf:"path"`
	} `koanf:"blockchainState"`

	BlockchainBlocksIterator struct {
		BlockHeadersBufferSize        int           `koanf:"blockHeadersBufferSize"`
		ConcurrentBlocksDownloadLimit int64         `koanf:"concurrentBlocksDownloadLimit"`
		WaitAfterErrorDuration        time.Duration `koanf:"waitAfterErrorDuration"`
		DownloadHeadersInterval       time.Duration `koanf:"downloadHeadersInterval"`
	} `koanf:"blockchainBlocksIterator"`

	Scanner struct {
		Enabled       bool          `koanf:"enabled"`
		StartHeight   int64         `koanf:"startHeight"`
		RetryInterval time.Duration `koanf:"retryInterval"`
		ScanInterval  time.Duration `koanf:"scanInterval"`
	} `koanf:"scanner"`

	AddressIndex struct {
		SpentCheckConcurrency int    `koanf:"spentCheckConcurrency"`
		SpentSource           string `koanf:"spentSource"`

		Mempool struct {
			Enabled          bool          `koanf:"enabled"`
			FetchConcurrency int           `koanf:"fetchConcurrency"`
			CacheTTL         time.Duration `koanf:"cacheTTL"`
			CacheCapacity    uint64        `koanf:"cacheCapacity"`
		} `koanf:"mempool"`
	} `koanf:"addressIndex"`

	Storage struct {
		Type string `koanf:"type"`

		InMemory struct {
			PersistenceFilePath string        `koanf:"persistenceFilePath"`
			PersistenceInterval time.Duration `koanf:"persistenceInterval"`
		} `koanf:"inMemory"`

		LevelDB struct {
			Path string `koanf:"path"`
		} `koanf:"leveldb"`

		Redis struct {
			Host      string `koanf:"host"`
			Username  string `koanf:"username"`
			Password  string `koanf:"password"`
			DB        int    `koanf:"db"`
			Namespace string `koanf:"namespace"`
			PageSize  int64  `koanf:"pageSize"`
			Debug     bool   `koanf:"debug"`
		} `koanf:"redis"`
	} `koanf:"storage"`

	Transaction struct {
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"transaction"`

	GRPC struct {
		Address string `koanf:"address"`
	} `koanf:"grpc"`

	Metrics struct {
		Address string `koanf:"address"`
	} `koanf:"metrics"`

	Kafka struct {
		Enabled  bool     `koanf:"enabled"`
		Brokers  []string `koanf:"brokers"`
		Topic    string   `koanf:"topic"`
		ClientID string   `koanf:"clientID"`
	} `koanf:"kafka"`

	Uptrace struct {
		DSN string `koanf:"dsn"`
	} `koanf:"uptrace"`
}

func (c Config) Validate() error {
	if err := validation.ValidateStruct(
		&c.BlockchainNode,
		validation.Field(&c.BlockchainNode.RestURL, validation.Required, is.URL),
		validation.Field(&c.BlockchainNode.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.BlockchainNode.RequestTimeout, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("failed to validate blockchainNode options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c.BlockchainParams,
		validation.Field(&c.BlockchainParams.Decimals, validation.Min(0)),
		validation.Field(&c.BlockchainParams.BlockGenerationInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.BlockchainParams.InfoRefreshInterval, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("failed to validate blockchainParams options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c.BlockchainBlocksIterator,
		validation.Field(&c.BlockchainBlocksIterator.BlockHeadersBufferSize, validation.Required, validation.Min(1)),
		validation.Field(&c.BlockchainBlocksIterator.ConcurrentBlocksDownloadLimit, validation.Required, validation.Min(int64(1))),
	); err != nil {
		return fmt.Errorf("failed to validate blockchainBlocksIterator options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c.Scanner,
		validation.Field(&c.Scanner.StartHeight, validation.Min(int64(0))),
		validation.Field(&c.Scanner.RetryInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.Scanner.ScanInterval, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("failed to validate scanner options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c.AddressIndex,
		validation.Field(&c.AddressIndex.SpentCheckConcurrency, validation.Min(0)),
		validation.Field(&c.AddressIndex.SpentSource, validation.Required, validation.In(SpentSourceREST, SpentSourceChainstate)),
	); err != nil {
		return fmt.Errorf("failed to validate addressIndex options: %w", err)
	}

	if c.AddressIndex.SpentSource == SpentSourceChainstate {
		if err := validation.ValidateStruct(
			&c.BlockchainState,
			validation.Field(&c.BlockchainState.Path, validation.Required),
		); err != nil {
			return fmt.Errorf("failed to validate blockchainState options: %w", err)
		}
	}

	if err := validation.ValidateStruct(
		&c.Storage,
		validation.Field(&c.Storage.Type, validation.Required, validation.In(StorageLevelDB, StorageRedis, StorageInMemory)),
	); err != nil {
		return fmt.Errorf("failed to validate storage options: %w", err)
	}

	switch c.Storage.Type {
	case StorageLevelDB:
		if err := validation.ValidateStruct(
			&c.Storage.LevelDB,
			validation.Field(&c.Storage.LevelDB.Path, validation.Required),
		); err != nil {
			return fmt.Errorf("failed to validate leveldb storage options: %w", err)
		}
	case StorageRedis:
		if err := validation.ValidateStruct(
			&c.Storage.Redis,
			validation.Field(&c.Storage.Redis.Host, validation.Required, is.DialString),
			validation.Field(&c.Storage.Redis.DB, validation.Min(0)),
			validation.Field(&c.Storage.Redis.PageSize, validation.Min(int64(0))),
		); err != nil {
			return fmt.Errorf("failed to validate redis storage options: %w", err)
		}
	case StorageInMemory:
		if err := validation.ValidateStruct(
			&c.Storage.InMemory,
			validation.Field(&c.Storage.InMemory.PersistenceInterval, validation.Min(time.Duration(0))),
		); err != nil {
			return fmt.Errorf("in-memory configuration validation error: %w", err)
		}
	}

	if err := validation.ValidateStruct(
		&c.GRPC,
		validation.Field(&c.GRPC.Address, validation.Required, is.DialString),
	); err != nil {
		return fmt.Errorf("failed to validate grpc options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c.Metrics,
		validation.Field(&c.Metrics.Address, is.DialString),
	); err != nil {
		return fmt.Errorf("failed to validate metrics options: %w", err)
	}

	if c.Kafka.Enabled {
		if err := validation.ValidateStruct(
			&c.Kafka,
			validation.Field(&c.Kafka.Brokers, validation.Required, validation.Each(is.DialString)),
			validation.Field(&c.Kafka.Topic, validation.Required),
		); err != nil {
			return fmt.Errorf("failed to validate kafka options: %w", err)
		}
	}

	if err := validation.ValidateStruct(
		&c.Uptrace,
		validation.Field(&c.Uptrace.DSN, is.URL),
	); err != nil {
		return fmt.Errorf("failed to validate uptrace options: %w", err)
	}

	if err := validation.ValidateStruct(
		&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Version, validation.Required, is.Semver),
		validation.Field(&c.Environment, validation.Required, validation.In(deploy.DEV, deploy.PREPROD, deploy.PROD, deploy.STAGE)),
		validation.Field(&c.LogLevel, validation.By(validateLogLevel)),
	); err != nil {
		return fmt.Errorf("failed to validate config options: %w", err)
	}

	return nil
}

func validateLogLevel(value interface{}) error {
	level, _ := value.(string)
	if level == "" {
		return nil
	}

	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}

	return nil
}
