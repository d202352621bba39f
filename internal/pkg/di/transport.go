package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoinconfig"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchaininfo"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexer"
	grpchandlers "github.com/ciricc/btc-address-indexer/internal/pkg/indexer/transport/grpc"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/restclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func NewBlockchainInfo(i *do.Injector) (*blockchaininfo.BlockchainInfo, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	restClient, err := do.Invoke[*restclient.RESTClient](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke rest client: %w", err)
	}

	btcConfig, err := do.Invoke[*bitcoinconfig.BitcoinConfig](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke bitcoin config: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	ctx, cancel := startupContext()
	defer cancel()

	info, err := blockchaininfo.New(ctx, logger, restClient, btcConfig, cfg.BlockchainParams.InfoRefreshInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create blockchain info: %w", err)
	}

	shutdowner.Add(shutdown.Func(func(context.Context) error { return info.Stop() }))

	return info, nil
}

func NewHealthGRPCHandlers(i *do.Injector) (*grpchandlers.HealthGRPCHandlers, error) {
	logger, err := do.Invoke[*zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	info, err := do.Invoke[*blockchaininfo.BlockchainInfo](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke blockchain info: %w", err)
	}

	ix, err := do.Invoke[*indexer.Indexer](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke indexer: %w", err)
	}

	return grpchandlers.NewHealthHandlers(info, ix, logger)
}

func NewGRPCServer(i *do.Injector) (*grpc.Server, error) {
	healthHandlers, err := do.Invoke[*grpchandlers.HealthGRPCHandlers](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke health grpc handlers: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	grpc_health_v1.RegisterHealthServer(server, healthHandlers)

	reflection.Register(server)

	shutdowner.Add(shutdown.FromStopper(server.GracefulStop))

	return server, nil
}

// NewMetricsServer serves the prometheus registry on /metrics.
func NewMetricsServer(i *do.Injector) (*http.Server, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	registry, err := do.Invoke[*prometheus.Registry](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke prometheus registry: %w", err)
	}

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke shutdowner: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		"metrics",
	))

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdowner.Add(shutdown.Func(server.Shutdown))

	return server, nil
}
