package config

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	Delimiter = "__"
	EnvPrefix = "SERVICE__"
)

type ServiceConfig interface {
	Validate() error
}

// Defaults are loaded before the file and the environment.
var Defaults = map[string]interface{}{
	"env":                           "dev",
	"logLevel":                      "info",
	"blockchainNode.requestTimeout": "1m",
	"blockchainParams.decimals":     8,
	"blockchainParams.blockGenerationInterval":               "10m",
	"blockchainParams.infoRefreshInterval":                   "1m",
	"blockchainBlocksIterator.blockHeadersBufferSize":        100,
	"blockchainBlocksIterator.concurrentBlocksDownloadLimit": 4,
	"scanner.enabled":                       true,
	"scanner.retryInterval":                 "10s",
	"scanner.scanInterval":                  "5s",
	"addressIndex.spentCheckConcurrency":    16,
	"addressIndex.spentSource":              SpentSourceREST,
	"addressIndex.mempool.fetchConcurrency": 8,
	"addressIndex.mempool.cacheTTL":         "10m",
	"storage.type":                          StorageLevelDB,
	"storage.inMemory.persistenceInterval":  "1m",
	"storage.redis.pageSize":                1000,
	"transaction.timeout":                   "30s",
	"grpc.address":                          "127.0.0.1:8010",
	"kafka.topic":                           "address-index-events",
	"kafka.clientID":                        "btc-address-indexer",
}

// LoadServiceConfig fills config from Defaults, then the YAML file at filePath
// (skipped when empty), then the environment variables prefixed with EnvPrefix.
// Nested environment keys are separated by Delimiter and converted to lowerCamelCase,
// so SERVICE__STORAGE__REDIS__HOST sets storage.redis.host.
// The result is validated with the Validate method of config.
func LoadServiceConfig[SC ServiceConfig](config SC, filePath string) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return fmt.Errorf("failed to load default config: %w", err)
	}

	if len(filePath) > 0 {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to read config with path %s: %w", filePath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, Delimiter, envKey), nil, koanf.WithMergeFunc(func(src, dest map[string]interface{}) error {
		return mergo.Merge(&dest, src, mergo.WithOverride)
	})); err != nil {
		return fmt.Errorf("failed to read environment variables: %w", err)
	}

	if err := k.Unmarshal("", config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	return nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)

	nested := strings.Split(s, Delimiter)
	for index := 0; index < len(nested); index++ {
		nested[index] = strcase.ToLowerCamel(nested[index])
	}

	return strings.Join(nested, Delimiter)
}
