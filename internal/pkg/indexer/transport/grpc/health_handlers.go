package grpchandlers

import (
	"context"

	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/state"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type BlockchainInfo interface {
	GetBlocksCount(ctx context.Context) (int64, error)
}

type IndexTip interface {
	Tip(ctx context.Context) (*state.Tip, bool, error)
}

// HealthGRPCHandlers reports SERVING once the index tip reached the node's best height.
type HealthGRPCHandlers struct {
	grpc_health_v1.UnimplementedHealthServer

	blockchainInfo BlockchainInfo
	index          IndexTip
	logger         *zerolog.Logger
}

func NewHealthHandlers(
	blockchainInfo BlockchainInfo,
	index IndexTip,
	logger *zerolog.Logger,
) (*HealthGRPCHandlers, error) {
	if blockchainInfo == nil || index == nil {
		return nil, ErrNilDependency
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &HealthGRPCHandlers{
		blockchainInfo: blockchainInfo,
		index:          index,
		logger:         logger,
	}, nil
}

func (h *HealthGRPCHandlers) Check(ctx context.Context, in *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	notServing := &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
	}

	blockchainBlocksCount, err := h.blockchainInfo.GetBlocksCount(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get node blocks count")

		return notServing, nil
	}

	tip, found, err := h.index.Tip(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get index tip")

		return notServing, nil
	}

	if !found || tip.Height != blockchainBlocksCount {
		return notServing, nil
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}

var _ grpc_health_v1.HealthServer = (*HealthGRPCHandlers)(nil)
