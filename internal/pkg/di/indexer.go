package di

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoinblocksiterator"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/scanner"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexer"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexevents"
	"github.com/ciricc/btc-address-indexer/internal/pkg/keyvalueabstraction/keyvaluestore"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/samber/do"
)

func NewKafkaSyncProducer(i *do.Injector) (sarama.SyncProducer, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.Kafka.ClientID
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return producer, nil
}

// NewIndexEventsPublisher publishes to kafka when it is enabled and drops events otherwise.
func NewIndexEventsPublisher(i *do.Injector) (indexevents.Publisher, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	if !cfg.Kafka.Enabled {
		return indexevents.NopPublisher{}, nil
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	producer, err := do.Invoke[sarama.SyncProducer](i)
	if err != nil {
		return nil, fmt.Errorf("invoke kafka sync producer error: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	publisher, err := indexevents.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	shutdowner.Add(shutdown.FromCloser(publisher))

	return publisher, nil
}

func NewPrometheusRegistry(_ *do.Injector) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry, nil
}

func NewIndexerMetrics(i *do.Injector) (*indexer.Metrics, error) {
	registry, err := do.Invoke[*prometheus.Registry](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke prometheus registry: %w", err)
	}

	metrics, err := indexer.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register indexer metrics: %w", err)
	}

	return metrics, nil
}

func NewIndexer(i *do.Injector) (*indexer.Indexer, error) {
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

	batchWriter, err := do.Invoke[keyvaluestore.BatchWriter](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke batch writer: %w", err)
	}

	restClient, err := do.Invoke[*restclient.RESTClient](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke rest client: %w", err)
	}

	publisher, err := do.Invoke[indexevents.Publisher](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke index events publisher: %w", err)
	}

	metrics, err := do.Invoke[*indexer.Metrics](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke indexer metrics: %w", err)
	}

	addressIndex, err := do.Invoke[*addrindex.Module](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke address index: %w", err)
	}

	ix, err := indexer.New(
		store,
		batchWriter,
		restClient,
		indexer.WithLogger(logger),
		indexer.WithPublisher(publisher),
		indexer.WithMetrics(metrics),
		indexer.WithStartHeight(cfg.Scanner.StartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}

	if err := ix.Register(addressIndex); err != nil {
		return nil, fmt.Errorf("failed to register address index: %w", err)
	}

	return ix, nil
}

func NewBitcoinBlocksIterator(i *do.Injector) (*bitcoinblocksiterator.BitcoinBlocksIterator, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("invoke config error: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("invoke logger error: %w", err)
	}

	nodeRESTClient, err := do.Invoke[*restclient.RESTClient](i)
	if err != nil {
		return nil, fmt.Errorf("invoke universal bitcoin rest client error: %w", err)
	}

	iteratorCfg := cfg.BlockchainBlocksIterator

	opts := []bitcoinblocksiterator.BitcoinBlocksIteratorOption{
		bitcoinblocksiterator.WithBlockHeadersBufferSize(iteratorCfg.BlockHeadersBufferSize),
		bitcoinblocksiterator.WithConcurrentBlocksDownloadLimit(iteratorCfg.ConcurrentBlocksDownloadLimit),
		bitcoinblocksiterator.WithLogger(logger),
	}

	if iteratorCfg.WaitAfterErrorDuration > 0 {
		opts = append(opts, bitcoinblocksiterator.WithWaitAfterErrorDuration(iteratorCfg.WaitAfterErrorDuration))
	}

	if iteratorCfg.DownloadHeadersInterval > 0 {
		opts = append(opts, bitcoinblocksiterator.WithDownloadHeadersInterval(iteratorCfg.DownloadHeadersInterval))
	}

	bitcoinBlocksIterator, err := bitcoinblocksiterator.NewBitcoinBlocksIterator(nodeRESTClient, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bitcoin blocks iterator: %w", err)
	}

	return bitcoinBlocksIterator, nil
}

// NewBlockchainScanner resumes from the indexer tip.
func NewBlockchainScanner(i *do.Injector) (*scanner.Scanner[*blockchain.Block], error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("invoke config error: %w", err)
	}

	bitcoinBlocksIterator, err := do.Invoke[*bitcoinblocksiterator.BitcoinBlocksIterator](i)
	if err != nil {
		return nil, fmt.Errorf("invoke bitcoin blocks iterator error: %w", err)
	}

	ix, err := do.Invoke[*indexer.Indexer](i)
	if err != nil {
		return nil, fmt.Errorf("invoke indexer error: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("invoke logger error: %w", err)
	}

	opts := []scanner.ScannerOption{scanner.WithLogger(logger)}

	if cfg.Scanner.RetryInterval > 0 {
		opts = append(opts, scanner.WithWaitAfterErrorDuration(cfg.Scanner.RetryInterval))
	}

	if cfg.Scanner.ScanInterval > 0 {
		opts = append(opts, scanner.WithScanInterval(cfg.Scanner.ScanInterval))
	}

	s, err := scanner.NewScannerWithState[*blockchain.Block](bitcoinBlocksIterator, ix, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	return s, nil
}
