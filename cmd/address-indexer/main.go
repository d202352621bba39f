package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/ciricc/btc-address-indexer/internal/pkg/app"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/scanner"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexer"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/uptrace/uptrace-go/uptrace"
	"google.golang.org/grpc"
)

const shutdownTimeout = 30 * time.Second

func main() {
	container := do.New()

	if err := app.ProvideAll(container); err != nil {
		panic(err)
	}

	logger, err := do.Invoke[*zerolog.Logger](container)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := initUptrace(container); err != nil {
		logger.Fatal().Err(err).Msg("failed to init uptrace tracing")
	}

	if err := runGRPCServer(container); err != nil {
		logger.Fatal().Err(err).Msg("failed to run grpc server")
	}

	if err := runMetricsServer(container); err != nil {
		logger.Fatal().Err(err).Msg("failed to run metrics server")
	}

	scannerDone, err := runScanner(ctx, container)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run scanner")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	<-scannerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdowner, err := do.Invoke[*shutdown.Shutdowner](container)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to invoke shutdowner")
	}

	if err := shutdowner.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to release resources")
	}

	if err := container.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown the container")
	}

	uptrace.Shutdown(shutdownCtx)
}

// runScanner starts connecting blocks in the background. The returned channel
// is closed once the scanner stopped.
func runScanner(ctx context.Context, container *do.Injector) (<-chan struct{}, error) {
	done := make(chan struct{})

	logger, err := do.Invoke[*zerolog.Logger](container)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke logger: %w", err)
	}

	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke configuration: %w", err)
	}

	if !cfg.Scanner.Enabled {
		logger.Warn().Msg("scanner is disabled")
		close(done)

		return done, nil
	}

	ix, err := do.Invoke[*indexer.Indexer](container)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke indexer: %w", err)
	}

	blocksScanner, err := do.Invoke[*scanner.Scanner[*blockchain.Block]](container)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke scanner: %w", err)
	}

	go func() {
		defer close(done)

		logger.Info().Int64("startHeight", cfg.Scanner.StartHeight).Msg("scanner started")

		err := blocksScanner.Start(ctx, ix.HandleBlock)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("scanner failed")
		}
	}()

	return done, nil
}

func initUptrace(container *do.Injector) error {
	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return fmt.Errorf("failed to invoke the configuration: %w", err)
	}

	logger, err := do.Invoke[*zerolog.Logger](container)
	if err != nil {
		return fmt.Errorf("failed to invoke the logger: %w", err)
	}

	if cfg.Uptrace.DSN == "" {
		logger.Warn().Msg("uptrace DSN not configured, tracing disabled")

		return nil
	}

	if cfg.Storage.Type == config.StorageRedis {
		redisClient, err := do.Invoke[*redis.Client](container)
		if err != nil {
			return fmt.Errorf("failed to invoke redis client: %w", err)
		}

		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			return fmt.Errorf("failed to init tracing for redis client: %w", err)
		}

		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			return fmt.Errorf("failed to init metrics for redis client: %w", err)
		}
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.Uptrace.DSN),
		uptrace.WithServiceName(cfg.Name),
		uptrace.WithServiceVersion(cfg.Version),
		uptrace.WithDeploymentEnvironment(cfg.Environment),
	)

	return nil
}

func runGRPCServer(container *do.Injector) error {
	logger, err := do.Invoke[*zerolog.Logger](container)
	if err != nil {
		return fmt.Errorf("failed to invoke logger: %w", err)
	}

	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return fmt.Errorf("failed to invoke configuration: %w", err)
	}

	grpcServer, err := do.Invoke[*grpc.Server](container)
	if err != nil {
		return fmt.Errorf("failed to invoke grpc server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("failed to listen grpc address: %w", err)
	}

	go func() {
		logger.Info().Str("address", cfg.GRPC.Address).Msg("grpc health server started")

		if err := grpcServer.Serve(ln); err != nil {
			logger.Fatal().Err(err).Msg("failed to serve grpc")
		}
	}()

	return nil
}

func runMetricsServer(container *do.Injector) error {
	logger, err := do.Invoke[*zerolog.Logger](container)
	if err != nil {
		return fmt.Errorf("failed to invoke logger: %w", err)
	}

	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return fmt.Errorf("failed to invoke configuration: %w", err)
	}

	if cfg.Metrics.Address == "" {
		logger.Warn().Msg("metrics address not configured, metrics endpoint disabled")

		return nil
	}

	server, err := do.Invoke[*http.Server](container)
	if err != nil {
		return fmt.Errorf("failed to invoke metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Metrics.Address)
	if err != nil {
		return fmt.Errorf("failed to listen metrics address: %w", err)
	}

	go func() {
		logger.Info().Str("address", cfg.Metrics.Address).Msg("metrics server started")

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to serve metrics")
		}
	}()

	return nil
}
