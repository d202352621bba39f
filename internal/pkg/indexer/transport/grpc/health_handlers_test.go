package grpchandlers

import (
	"context"
	"errors"
	"testing"

	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/state"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type fakeInfo struct {
	blocks int64
	err    error
}

func (f fakeInfo) GetBlocksCount(context.Context) (int64, error) {
	return f.blocks, f.err
}

type fakeTip struct {
	tip   *state.Tip
	found bool
	err   error
}

func (f fakeTip) Tip(context.Context) (*state.Tip, bool, error) {
	return f.tip, f.found, f.err
}

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name string
		info fakeInfo
		tip  fakeTip
		want grpc_health_v1.HealthCheckResponse_ServingStatus
	}{
		{
			name: "synced",
			info: fakeInfo{blocks: 100},
			tip:  fakeTip{tip: &state.Tip{Height: 100}, found: true},
			want: grpc_health_v1.HealthCheckResponse_SERVING,
		},
		{
			name: "behind",
			info: fakeInfo{blocks: 101},
			tip:  fakeTip{tip: &state.Tip{Height: 100}, found: true},
			want: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
		{
			name: "empty index",
			info: fakeInfo{blocks: 0},
			tip:  fakeTip{},
			want: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
		{
			name: "node error",
			info: fakeInfo{err: errors.New("timeout")},
			tip:  fakeTip{tip: &state.Tip{}, found: true},
			want: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
		{
			name: "store error",
			info: fakeInfo{blocks: 1},
			tip:  fakeTip{err: errors.New("closed")},
			want: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHealthHandlers(tc.info, tc.tip, nil)
			require.NoError(t, err)

			resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.GetStatus())
		})
	}
}

func TestNewHealthHandlersValidation(t *testing.T) {
	_, err := NewHealthHandlers(nil, fakeTip{}, nil)
	require.ErrorIs(t, err, ErrNilDependency)
}
